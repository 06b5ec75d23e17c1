// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"log"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// The display name of the managed Maps key in the project.
const geocodingKeyDisplayName = "PollCSV Geocoding Key"

// ResolveGoogleAPIKey returns the configured Maps key, falling back to
// looking the managed key up through Application Default Credentials.
func (s *Settings) ResolveGoogleAPIKey(ctx context.Context) (string, error) {
	if s.GoogleAPIKey != "" {
		return s.GoogleAPIKey, nil
	}

	return apiKeyFromADC(ctx, s.GoogleProjectID)
}

func apiKeyFromADC(ctx context.Context, projectID string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	if projectID == "" {
		projectID = creds.ProjectID
	}

	if projectID == "" {
		return "", errors.New("no project ID in credentials; set google_project_id or POLLCSV_GOOGLE_PROJECT_ID")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != geocodingKeyDisplayName {
			continue
		}

		// ListKeys redacts KeyString; GetKeyString returns the secret.
		log.Printf("found key resource %q, retrieving secret", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q has an empty key string", geocodingKeyDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key %q not found in project %s", geocodingKeyDisplayName, projectID)
}
