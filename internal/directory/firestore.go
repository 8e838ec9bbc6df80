package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionParticipants = "participants"
	collectionTeams        = "teams"
	collectionGlobalKeys   = "global_keys"
	globalKeysDoc          = "bootcamp-shared"
)

// requiredGlobalKeys must all be present and non-empty on the shared keys doc.
var requiredGlobalKeys = []string{
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
}

// Client wraps the Firestore participant and team collections.
type Client struct {
	fs *firestore.Client
}

// NewClient connects to the named Firestore database.
func NewClient(ctx context.Context, project, database string) (*Client, error) {
	fs, err := firestore.NewClientWithDatabase(ctx, project, database)
	if err != nil {
		return nil, fmt.Errorf("connect to firestore: %w", err)
	}
	return &Client{fs: fs}, nil
}

// Close releases the underlying Firestore connection.
func (c *Client) Close() error {
	return c.fs.Close()
}

type participantDoc struct {
	GithubHandle string `firestore:"github_handle"`
	TeamName     string `firestore:"team_name"`
	FirstName    string `firestore:"first_name"`
	LastName     string `firestore:"last_name"`
	Onboarded    bool   `firestore:"onboarded"`
}

// Participants returns the directory keyed by lowercased handle. A participant
// without a team is filed under Unassigned.
func (c *Client) Participants(ctx context.Context) (map[string]Participant, error) {
	out := make(map[string]Participant)
	iter := c.fs.Collection(collectionParticipants).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		var p participantDoc
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode participant %s: %w", doc.Ref.ID, err)
		}
		handle := strings.ToLower(doc.Ref.ID)
		team := p.TeamName
		if team == "" {
			team = Unassigned
		}
		out[handle] = Participant{
			TeamName:  team,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		}
	}
	return out, nil
}

// SetupTeams creates team docs for the given names, updating the timestamp on
// ones that already exist. Returns counts of created and updated teams.
func (c *Client) SetupTeams(ctx context.Context, names []string, dryRun bool) (created, updated int, err error) {
	for _, name := range names {
		ref := c.fs.Collection(collectionTeams).Doc(name)
		_, err := ref.Get(ctx)
		switch {
		case err == nil:
			if !dryRun {
				if _, err := ref.Update(ctx, []firestore.Update{
					{Path: "updated_at", Value: time.Now().UTC()},
				}); err != nil {
					return created, updated, fmt.Errorf("update team %q: %w", name, err)
				}
			}
			updated++
		case status.Code(err) == codes.NotFound:
			if !dryRun {
				if _, err := ref.Set(ctx, map[string]interface{}{
					"team_name":    name,
					"participants": []string{},
					"created_at":   time.Now().UTC(),
				}); err != nil {
					return created, updated, fmt.Errorf("create team %q: %w", name, err)
				}
			}
			created++
		default:
			return created, updated, fmt.Errorf("fetch team %q: %w", name, err)
		}
	}
	return created, updated, nil
}

// RenameParticipant moves a participant doc to a new handle and swaps the
// handle inside the team's member list.
func (c *Client) RenameParticipant(ctx context.Context, oldHandle, newHandle string) error {
	oldRef := c.fs.Collection(collectionParticipants).Doc(oldHandle)
	doc, err := oldRef.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetch participant %q: %w", oldHandle, err)
	}
	data := doc.Data()
	data["github_handle"] = newHandle
	data["updated_at"] = time.Now().UTC()

	if _, err := c.fs.Collection(collectionParticipants).Doc(newHandle).Set(ctx, data); err != nil {
		return fmt.Errorf("create participant %q: %w", newHandle, err)
	}

	if teamName, ok := data["team_name"].(string); ok && teamName != "" {
		if err := c.swapTeamMember(ctx, teamName, oldHandle, newHandle); err != nil {
			return err
		}
	}

	if _, err := oldRef.Delete(ctx); err != nil {
		return fmt.Errorf("delete participant %q: %w", oldHandle, err)
	}
	return nil
}

func (c *Client) swapTeamMember(ctx context.Context, teamName, oldHandle, newHandle string) error {
	ref := c.fs.Collection(collectionTeams).Doc(teamName)
	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch team %q: %w", teamName, err)
	}
	members, _ := doc.Data()["participants"].([]interface{})
	changed := false
	updated := make([]string, 0, len(members))
	for _, m := range members {
		handle, _ := m.(string)
		if handle == oldHandle {
			handle = newHandle
			changed = true
		}
		updated = append(updated, handle)
	}
	if !changed {
		return nil
	}
	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "participants", Value: updated},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update team %q members: %w", teamName, err)
	}
	return nil
}

// SetTeamKey stores a provisioned API key on the team's doc.
func (c *Client) SetTeamKey(ctx context.Context, teamName, key, keyName string) error {
	_, err := c.fs.Collection(collectionTeams).Doc(teamName).Update(ctx, []firestore.Update{
		{Path: "openai_api_key", Value: key},
		{Path: "openai_api_key_name", Value: keyName},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("store key for team %q: %w", teamName, err)
	}
	return nil
}

// TeamNames lists every team document ID.
func (c *Client) TeamNames(ctx context.Context) ([]string, error) {
	refs, err := c.fs.Collection(collectionTeams).DocumentRefs(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.ID)
	}
	return names, nil
}

// Report collects findings from a directory consistency check.
type Report struct {
	Errors        []string
	Warnings      []string
	Teams         int
	TeamsWithKeys int
	Participants  int
	Onboarded     int
}

// Valid reports whether the check found no errors.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

func (r *Report) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Verify cross-checks the directory: global keys complete, team docs well
// formed, participants pointing at existing teams and listed as members.
func (c *Client) Verify(ctx context.Context) (*Report, error) {
	report := &Report{}

	keysDoc, err := c.fs.Collection(collectionGlobalKeys).Doc(globalKeysDoc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		report.errorf("global keys document does not exist")
	} else if err != nil {
		return nil, fmt.Errorf("fetch global keys: %w", err)
	} else {
		keys := keysDoc.Data()
		for _, name := range requiredGlobalKeys {
			if v, ok := keys[name]; !ok || v == "" {
				report.errorf("global key missing or empty: %s", name)
			}
		}
	}

	teams := make(map[string][]string)
	iter := c.fs.Collection(collectionTeams).Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			iter.Stop()
			return nil, fmt.Errorf("list teams: %w", err)
		}
		data := doc.Data()
		name, _ := data["team_name"].(string)
		if name == "" {
			report.errorf("team document %s missing team_name field", doc.Ref.ID)
			continue
		}
		report.Teams++
		members := []string{}
		if raw, ok := data["participants"].([]interface{}); ok {
			for _, m := range raw {
				if handle, ok := m.(string); ok {
					members = append(members, handle)
				}
			}
		} else {
			report.errorf("team %q participants field is not a list", name)
		}
		teams[name] = members
		if key, _ := data["openai_api_key"].(string); key != "" {
			report.TeamsWithKeys++
		} else {
			report.warnf("team %q does not have an API key", name)
		}
		if len(members) == 0 {
			report.warnf("team %q has no participants", name)
		}
	}
	iter.Stop()
	if report.Teams == 0 {
		report.errorf("no teams found")
	}

	piter := c.fs.Collection(collectionParticipants).Documents(ctx)
	defer piter.Stop()
	for {
		doc, err := piter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		data := doc.Data()
		handle, _ := data["github_handle"].(string)
		if handle == "" {
			report.errorf("participant document %s missing github_handle field", doc.Ref.ID)
			continue
		}
		report.Participants++
		teamName, _ := data["team_name"].(string)
		members, exists := teams[teamName]
		if !exists {
			report.errorf("participant %q references non-existent team: %s", handle, teamName)
		} else {
			listed := false
			for _, m := range members {
				if m == handle {
					listed = true
					break
				}
			}
			if !listed {
				report.warnf("participant %q not in team %q participants list", handle, teamName)
			}
		}
		if onboarded, _ := data["onboarded"].(bool); onboarded {
			report.Onboarded++
		}
	}

	return report, nil
}
