// Package keys provisions per-team Gemini API keys through the Google API
// Keys service.
package keys

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"google.golang.org/api/iterator"

	"coderops/internal/ui"
)

const (
	geminiService   = "generativelanguage.googleapis.com"
	geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"

	validationAttempts = 3
	validationBackoff  = 2 * time.Second
)

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Provisioner creates and validates restricted Gemini API keys in one GCP
// project.
type Provisioner struct {
	client   *apikeys.Client
	project  string
	bootcamp string
	http     *http.Client
}

// NewProvisioner connects to the API Keys service for the given project.
func NewProvisioner(ctx context.Context, project, bootcamp string) (*Provisioner, error) {
	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to api keys service: %w", err)
	}
	return &Provisioner{
		client:   client,
		project:  project,
		bootcamp: bootcamp,
		http:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Close releases the API Keys client.
func (p *Provisioner) Close() error {
	return p.client.Close()
}

// DisplayName returns the key name used for a team.
func (p *Provisioner) DisplayName(team string) string {
	return fmt.Sprintf("%s-%s-gemini-key", p.bootcamp, team)
}

func (p *Provisioner) parent() string {
	return fmt.Sprintf("projects/%s/locations/global", p.project)
}

// EnsureKey returns the key string for a team, creating the key if needed.
// With overwrite an existing key is deleted and reissued. Dry-run reports
// what would happen and returns an empty key.
func (p *Provisioner) EnsureKey(ctx context.Context, team string, overwrite, dryRun bool) (string, string, error) {
	displayName := p.DisplayName(team)

	existing, err := p.findKey(ctx, displayName)
	if err != nil {
		return "", "", err
	}
	if existing != "" {
		if !overwrite {
			if dryRun {
				ui.ShowInfo("would reuse existing key %q", displayName)
				return "", displayName, nil
			}
			key, err := p.keyString(ctx, existing)
			return key, displayName, err
		}
		if dryRun {
			ui.ShowInfo("would delete and recreate key %q", displayName)
			return "", displayName, nil
		}
		if err := p.deleteKey(ctx, existing); err != nil {
			return "", "", err
		}
	} else if dryRun {
		ui.ShowInfo("would create key %q", displayName)
		return "", displayName, nil
	}

	name, err := p.createKey(ctx, displayName)
	if err != nil {
		return "", "", err
	}
	key, err := p.keyString(ctx, name)
	return key, displayName, err
}

// findKey returns the resource name of the key with the given display name,
// or empty when none exists.
func (p *Provisioner) findKey(ctx context.Context, displayName string) (string, error) {
	it := p.client.ListKeys(ctx, &apikeyspb.ListKeysRequest{Parent: p.parent()})
	for {
		key, err := it.Next()
		if err == iterator.Done {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("list api keys: %w", err)
		}
		if key.GetDisplayName() == displayName {
			return key.GetName(), nil
		}
	}
}

// createKey mints a new key restricted to the Generative Language API.
func (p *Provisioner) createKey(ctx context.Context, displayName string) (string, error) {
	op, err := p.client.CreateKey(ctx, &apikeyspb.CreateKeyRequest{
		Parent: p.parent(),
		Key: &apikeyspb.Key{
			DisplayName: displayName,
			Restrictions: &apikeyspb.Restrictions{
				ApiTargets: []*apikeyspb.ApiTarget{{Service: geminiService}},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create key %q: %w", displayName, err)
	}
	key, err := op.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("create key %q: %w", displayName, err)
	}
	return key.GetName(), nil
}

func (p *Provisioner) deleteKey(ctx context.Context, name string) error {
	op, err := p.client.DeleteKey(ctx, &apikeyspb.DeleteKeyRequest{Name: name})
	if err != nil {
		return fmt.Errorf("delete key %q: %w", name, err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("delete key %q: %w", name, err)
	}
	return nil
}

func (p *Provisioner) keyString(ctx context.Context, name string) (string, error) {
	resp, err := p.client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("fetch key string for %q: %w", name, err)
	}
	return resp.GetKeyString(), nil
}

// Validate checks the key against the Gemini models endpoint. Fresh keys can
// lag in propagation, so transient failures are retried with a fixed backoff.
func (p *Provisioner) Validate(ctx context.Context, key string) error {
	var lastErr error
	for attempt := 0; attempt < validationAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(validationBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, geminiModelsURL+"?key="+key, nil)
		if err != nil {
			return err
		}
		resp, err := p.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("key rejected (HTTP %d)", resp.StatusCode)
		default:
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("key validation failed after %d attempts: %w", validationAttempts, lastErr)
}
