package directory

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GlobalKeyNames is the full set of shared keys a bootcamp needs provisioned.
// Verify checks requiredGlobalKeys, the subset every environment uses;
// WEB_SEARCH_BASE_URL only matters when web search is enabled.
var GlobalKeyNames = []string{
	"EMBEDDING_API_KEY",
	"EMBEDDING_BASE_URL",
	"WEAVIATE_API_KEY",
	"WEAVIATE_HTTP_HOST",
	"WEAVIATE_GRPC_HOST",
	"WEAVIATE_HTTP_PORT",
	"WEAVIATE_GRPC_PORT",
	"WEAVIATE_HTTP_SECURE",
	"WEAVIATE_GRPC_SECURE",
	"LANGFUSE_HOST",
	"WEB_SEARCH_BASE_URL",
}

// RosterEntry is one row of a participant roster CSV. Handles are stored
// lowercased; Email, FirstName and LastName may be empty.
type RosterEntry struct {
	GithubHandle string
	TeamName     string
	Email        string
	FirstName    string
	LastName     string
}

// GlobalKeys fetches the shared keys document. The second return reports
// whether the document exists.
func (c *Client) GlobalKeys(ctx context.Context) (map[string]string, bool, error) {
	doc, err := c.fs.Collection(collectionGlobalKeys).Doc(globalKeysDoc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch global keys: %w", err)
	}
	out := make(map[string]string)
	for name, v := range doc.Data() {
		if s, ok := v.(string); ok {
			out[name] = s
		}
	}
	return out, true, nil
}

// SetGlobalKeys writes the shared keys document. updated_at is always
// stamped; created_at only on first write.
func (c *Client) SetGlobalKeys(ctx context.Context, keys map[string]string) error {
	ref := c.fs.Collection(collectionGlobalKeys).Doc(globalKeysDoc)
	_, err := ref.Get(ctx)
	exists := err == nil
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("fetch global keys: %w", err)
	}

	data := make(map[string]interface{}, len(keys)+2)
	for name, v := range keys {
		data[name] = v
	}
	data["updated_at"] = time.Now().UTC()
	if !exists {
		data["created_at"] = time.Now().UTC()
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return fmt.Errorf("store global keys: %w", err)
	}
	return nil
}

// SetupParticipants creates or updates the team and participant documents for
// a roster. Existing participants keep their onboarded flag and created_at;
// existing teams gain the roster's handles without losing current members.
func (c *Client) SetupParticipants(ctx context.Context, entries []RosterEntry, dryRun bool) (teamsCreated, teamsUpdated, participants int, err error) {
	byTeam := make(map[string][]RosterEntry)
	teamOrder := []string{}
	for _, e := range entries {
		if _, ok := byTeam[e.TeamName]; !ok {
			teamOrder = append(teamOrder, e.TeamName)
		}
		byTeam[e.TeamName] = append(byTeam[e.TeamName], e)
	}

	for _, team := range teamOrder {
		members := byTeam[team]
		handles := make([]string, 0, len(members))
		for _, m := range members {
			handles = append(handles, m.GithubHandle)
		}

		ref := c.fs.Collection(collectionTeams).Doc(team)
		doc, err := ref.Get(ctx)
		switch {
		case err == nil:
			if !dryRun {
				existing, _ := doc.Data()["participants"].([]interface{})
				merged := handles
				for _, m := range existing {
					if h, ok := m.(string); ok {
						merged = appendMissing(merged, h)
					}
				}
				if _, err := ref.Update(ctx, []firestore.Update{
					{Path: "participants", Value: merged},
					{Path: "updated_at", Value: time.Now().UTC()},
				}); err != nil {
					return teamsCreated, teamsUpdated, participants, fmt.Errorf("update team %q: %w", team, err)
				}
			}
			teamsUpdated++
		case status.Code(err) == codes.NotFound:
			if !dryRun {
				if _, err := ref.Set(ctx, map[string]interface{}{
					"team_name":    team,
					"participants": handles,
					"created_at":   time.Now().UTC(),
				}); err != nil {
					return teamsCreated, teamsUpdated, participants, fmt.Errorf("create team %q: %w", team, err)
				}
			}
			teamsCreated++
		default:
			return teamsCreated, teamsUpdated, participants, fmt.Errorf("fetch team %q: %w", team, err)
		}

		for _, m := range members {
			if dryRun {
				participants++
				continue
			}
			pref := c.fs.Collection(collectionParticipants).Doc(m.GithubHandle)
			_, err := pref.Get(ctx)
			switch {
			case err == nil:
				if _, err := pref.Update(ctx, []firestore.Update{
					{Path: "team_name", Value: m.TeamName},
					{Path: "email", Value: m.Email},
					{Path: "first_name", Value: m.FirstName},
					{Path: "last_name", Value: m.LastName},
					{Path: "updated_at", Value: time.Now().UTC()},
				}); err != nil {
					return teamsCreated, teamsUpdated, participants, fmt.Errorf("update participant %q: %w", m.GithubHandle, err)
				}
			case status.Code(err) == codes.NotFound:
				if _, err := pref.Set(ctx, map[string]interface{}{
					"github_handle": m.GithubHandle,
					"team_name":     m.TeamName,
					"email":         m.Email,
					"first_name":    m.FirstName,
					"last_name":     m.LastName,
					"onboarded":     false,
					"created_at":    time.Now().UTC(),
				}); err != nil {
					return teamsCreated, teamsUpdated, participants, fmt.Errorf("create participant %q: %w", m.GithubHandle, err)
				}
			default:
				return teamsCreated, teamsUpdated, participants, fmt.Errorf("fetch participant %q: %w", m.GithubHandle, err)
			}
			participants++
		}
	}

	return teamsCreated, teamsUpdated, participants, nil
}

// DeleteParticipants removes the given handles: each participant document is
// deleted, the handle is pulled out of its team's member list and teams left
// with no members are deleted too. Unknown handles are skipped.
func (c *Client) DeleteParticipants(ctx context.Context, handles []string, dryRun bool) (deleted, teamsDeleted int, skipped []string, err error) {
	for _, handle := range handles {
		ref := c.fs.Collection(collectionParticipants).Doc(handle)
		doc, err := ref.Get(ctx)
		if status.Code(err) == codes.NotFound {
			skipped = append(skipped, handle)
			continue
		}
		if err != nil {
			return deleted, teamsDeleted, skipped, fmt.Errorf("fetch participant %q: %w", handle, err)
		}

		teamName, _ := doc.Data()["team_name"].(string)
		if dryRun {
			deleted++
			continue
		}

		if teamName != "" {
			empty, err := c.removeTeamMember(ctx, teamName, handle)
			if err != nil {
				return deleted, teamsDeleted, skipped, err
			}
			if empty {
				if _, err := c.fs.Collection(collectionTeams).Doc(teamName).Delete(ctx); err != nil {
					return deleted, teamsDeleted, skipped, fmt.Errorf("delete empty team %q: %w", teamName, err)
				}
				teamsDeleted++
			}
		}

		if _, err := ref.Delete(ctx); err != nil {
			return deleted, teamsDeleted, skipped, fmt.Errorf("delete participant %q: %w", handle, err)
		}
		deleted++
	}
	return deleted, teamsDeleted, skipped, nil
}

// removeTeamMember drops the handle from the team's member list and reports
// whether the team is now empty. A missing team or a handle that is not
// listed is a no-op.
func (c *Client) removeTeamMember(ctx context.Context, teamName, handle string) (empty bool, err error) {
	ref := c.fs.Collection(collectionTeams).Doc(teamName)
	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetch team %q: %w", teamName, err)
	}

	members, _ := doc.Data()["participants"].([]interface{})
	remaining := make([]string, 0, len(members))
	found := false
	for _, m := range members {
		h, _ := m.(string)
		if h == handle {
			found = true
			continue
		}
		remaining = append(remaining, h)
	}
	if !found {
		return false, nil
	}

	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "participants", Value: remaining},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("update team %q members: %w", teamName, err)
	}
	return len(remaining) == 0, nil
}

// SetTeamWebSearchKey stores a web search API key on the team's doc.
func (c *Client) SetTeamWebSearchKey(ctx context.Context, teamName, key string) error {
	ref := c.fs.Collection(collectionTeams).Doc(teamName)
	_, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("team %q not found", teamName)
	}
	if err != nil {
		return fmt.Errorf("fetch team %q: %w", teamName, err)
	}
	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "web_search_api_key", Value: key},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("store web search key for team %q: %w", teamName, err)
	}
	return nil
}

func appendMissing(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}
