package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps/mapstest"
)

func newTestDiscovery(fake *mapstest.Fake) *discovery.Service {
	return discovery.NewService(fake, nil, discovery.Options{}, zerolog.Nop())
}

func TestSearchPlaces(t *testing.T) {
	fake := &mapstest.Fake{
		AutocompleteFunc: func(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Prediction, error) {
			return []maps.Prediction{
				{PlaceID: "p-sigiriya", MainText: "Sigiriya", SecondaryText: "Dambulla, Sri Lanka"},
				{PlaceID: "p-museum", MainText: "Sigiriya Museum", SecondaryText: "Sigiriya, Sri Lanka"},
			}, nil
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := searchPlaces(context.Background(), &buf, newTestDiscovery(fake), "sigiri", "tok-1", false); err != nil {
			t.Fatalf("searchPlaces failed: %v", err)
		}
		output := buf.String()
		for _, expected := range []string{"ID", "NAME", "AREA", "p-sigiriya", "Sigiriya Museum", "Dambulla, Sri Lanka"} {
			if !strings.Contains(output, expected) {
				t.Errorf("expected output to contain %q, got:\n%s", expected, output)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := searchPlaces(context.Background(), &buf, newTestDiscovery(fake), "sigiri", "", true); err != nil {
			t.Fatalf("searchPlaces failed: %v", err)
		}
		var suggestions []discovery.Suggestion
		if err := json.Unmarshal(buf.Bytes(), &suggestions); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if len(suggestions) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
		}
		if suggestions[0].ID != "p-sigiriya" {
			t.Errorf("expected first suggestion p-sigiriya, got %s", suggestions[0].ID)
		}
	})

	calls := fake.AutocompleteCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 autocomplete calls, got %d", len(calls))
	}
	if calls[0].SessionToken != "tok-1" {
		t.Errorf("expected session token tok-1, got %q", calls[0].SessionToken)
	}
}

func TestSearchPlacesNoResults(t *testing.T) {
	var buf bytes.Buffer
	if err := searchPlaces(context.Background(), &buf, newTestDiscovery(&mapstest.Fake{}), "zzzz", "", false); err != nil {
		t.Fatalf("searchPlaces failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "No places found." {
		t.Errorf("expected empty message, got %q", got)
	}
}

func TestSearchPlacesProviderError(t *testing.T) {
	fake := &mapstest.Fake{
		AutocompleteFunc: func(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Prediction, error) {
			return nil, &maps.StatusError{Op: "autocomplete", Status: maps.StatusRequestDenied}
		},
	}

	var buf bytes.Buffer
	err := searchPlaces(context.Background(), &buf, newTestDiscovery(fake), "galle", "", false)
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if maps.StatusOf(err) != maps.StatusRequestDenied {
		t.Errorf("expected REQUEST_DENIED to be preserved, got %v", err)
	}
}

func TestPlaceDetails(t *testing.T) {
	rating := 4.7
	open := true
	fake := &mapstest.Fake{
		DetailsFunc: func(ctx context.Context, placeID string, fields []string) (*maps.Place, error) {
			return &maps.Place{
				PlaceID:          placeID,
				Name:             "Temple of the Tooth",
				FormattedAddress: "Sri Dalada Veediya, Kandy",
				Rating:           &rating,
				UserRatingsTotal: 52000,
				OpenNow:          &open,
				OpeningHours:     []string{"Monday: 5:30 AM - 8:00 PM"},
				Types:            []string{"place_of_worship", "tourist_attraction"},
				EditorialSummary: "Buddhist temple housing a relic of the Buddha.",
			}, nil
		},
	}

	var buf bytes.Buffer
	if err := placeDetails(context.Background(), &buf, newTestDiscovery(fake), "p-tooth", false); err != nil {
		t.Fatalf("placeDetails failed: %v", err)
	}

	output := buf.String()
	expectedStrings := []string{
		"Temple of the Tooth",
		"Category: place of worship",
		"Address:  Sri Dalada Veediya, Kandy",
		"Rating:   4.7 (52000 reviews)",
		"Open now",
		"Monday: 5:30 AM - 8:00 PM",
		"relic of the Buddha",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestPlaceDetailsNoRating(t *testing.T) {
	fake := &mapstest.Fake{
		DetailsFunc: func(ctx context.Context, placeID string, fields []string) (*maps.Place, error) {
			return &maps.Place{PlaceID: placeID, Name: "Pidurangala Rock", Types: []string{"natural_feature"}}, nil
		},
	}

	var buf bytes.Buffer
	if err := placeDetails(context.Background(), &buf, newTestDiscovery(fake), "p-rock", false); err != nil {
		t.Fatalf("placeDetails failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no ratings yet") {
		t.Errorf("expected missing rating message, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Open now") || strings.Contains(buf.String(), "Closed now") {
		t.Errorf("expected no open status without provider data, got:\n%s", buf.String())
	}
}

func TestPlaceDetailsNotFound(t *testing.T) {
	fake := &mapstest.Fake{
		DetailsFunc: func(ctx context.Context, placeID string, fields []string) (*maps.Place, error) {
			return nil, &maps.StatusError{Op: "details", Status: maps.StatusNotFound}
		},
	}

	var buf bytes.Buffer
	if err := placeDetails(context.Background(), &buf, newTestDiscovery(fake), "gone", true); err == nil {
		t.Fatal("expected error but got none")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on failure, got:\n%s", buf.String())
	}
}
