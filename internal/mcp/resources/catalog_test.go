package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
)

func readText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("contents count = %d, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T, want TextResourceContents", contents[0])
	}
	if text.MIMEType != catalogMIMEType {
		t.Errorf("MIMEType = %q, want %q", text.MIMEType, catalogMIMEType)
	}
	return text
}

func TestCatalog_Preferences(t *testing.T) {
	c := NewCatalog(Categories{})

	contents, err := c.PreferencesHandler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: PreferencesURI},
	})
	if err != nil {
		t.Fatalf("PreferencesHandler() error = %v", err)
	}
	text := readText(t, contents)
	if text.URI != PreferencesURI {
		t.Errorf("URI = %q, want %q", text.URI, PreferencesURI)
	}

	var doc struct {
		Preferences []Preference `json:"preferences"`
	}
	if err := json.Unmarshal([]byte(text.Text), &doc); err != nil {
		t.Fatalf("decode preferences: %v", err)
	}
	if len(doc.Preferences) != 3 {
		t.Fatalf("preferences count = %d, want 3", len(doc.Preferences))
	}

	byName := map[string]Preference{}
	for _, p := range doc.Preferences {
		if p.Color == "" {
			t.Errorf("preference %q has no color", p.Name)
		}
		byName[p.Name] = p
	}
	if !byName["shortest"].OptimizeWaypoints {
		t.Error("shortest should optimize waypoints")
	}
	if byName["recommended"].OptimizeWaypoints {
		t.Error("recommended should keep waypoint order")
	}
	if got := byName["scenic"].Avoid; len(got) != 1 || got[0] != "highways" {
		t.Errorf("scenic avoid = %v, want [highways]", got)
	}
}

func TestCatalog_Categories(t *testing.T) {
	tests := []struct {
		name       string
		categories Categories
		wantRegion string
		wantTypes  int
	}{
		{
			name:       "defaults",
			categories: Categories{},
			wantRegion: discovery.DefaultRegion,
			wantTypes:  len(discovery.DefaultTypes),
		},
		{
			name:       "configured",
			categories: Categories{Region: "mv", RegionName: "Maldives", Types: []string{"natural_feature"}},
			wantRegion: "mv",
			wantTypes:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog(tt.categories)
			contents, err := c.CategoriesHandler(context.Background(), mcp.ReadResourceRequest{})
			if err != nil {
				t.Fatalf("CategoriesHandler() error = %v", err)
			}
			text := readText(t, contents)
			if text.URI != CategoriesURI {
				t.Errorf("URI = %q, want %q", text.URI, CategoriesURI)
			}

			var got Categories
			if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
				t.Fatalf("decode categories: %v", err)
			}
			if got.Region != tt.wantRegion {
				t.Errorf("Region = %q, want %q", got.Region, tt.wantRegion)
			}
			if got.RegionName == "" {
				t.Error("RegionName should not be empty")
			}
			if len(got.Types) != tt.wantTypes {
				t.Errorf("Types count = %d, want %d", len(got.Types), tt.wantTypes)
			}
		})
	}
}

func TestCatalog_ResourceDefinitions(t *testing.T) {
	c := NewCatalog(Categories{})
	for _, r := range []mcp.Resource{c.PreferencesResource(), c.CategoriesResource()} {
		if r.URI == "" || r.Name == "" {
			t.Errorf("resource missing URI or name: %+v", r)
		}
		if r.MIMEType != catalogMIMEType {
			t.Errorf("resource %s MIMEType = %q", r.URI, r.MIMEType)
		}
	}
}
