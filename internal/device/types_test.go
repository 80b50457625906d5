package device

import (
	"encoding/json"
	"testing"
)

func TestTrackID_UnmarshalVariants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want TrackID
	}{
		{"string", `{"track":" 12 "}`, "12"},
		{"integer", `{"track":12}`, "12"},
		{"null", `{"track":null}`, ""},
		{"absent", `{}`, ""},
		{"object", `{"track":{"id":1}}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d Detection
			if err := json.Unmarshal([]byte(tc.in), &d); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tc.in, err)
			}
			if d.Track != tc.want {
				t.Fatalf("Track = %q, want %q", d.Track, tc.want)
			}
		})
	}
}

func TestDetection_OptionalFieldsStayNil(t *testing.T) {
	var d Detection
	if err := json.Unmarshal([]byte(`{"source":"mqtt"}`), &d); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if d.Label != nil || d.Confidence != nil {
		t.Fatalf("Label/Confidence = %v/%v, want nil", d.Label, d.Confidence)
	}
	if d.Source != "mqtt" {
		t.Fatalf("Source = %q, want mqtt", d.Source)
	}
}

func TestDetection_MistypedFieldsAreDropped(t *testing.T) {
	body := `{"items":[
		{"label":"person","confidence":"high","source":{"cam":1},"track":7},
		{"label":["car"],"confidence":0.5,"source":3},
		"garbage"
	]}`

	var resp EventsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(resp.Items))
	}

	first := resp.Items[0]
	if first.Label == nil || *first.Label != "person" {
		t.Fatalf("first Label = %v, want person", first.Label)
	}
	if first.Confidence != nil || first.Source != "" || first.Track != "7" {
		t.Fatalf("first = conf %v source %q track %q, want nil/empty/7", first.Confidence, first.Source, first.Track)
	}

	second := resp.Items[1]
	if second.Label != nil {
		t.Fatalf("second Label = %q, want nil", *second.Label)
	}
	if second.Confidence == nil || *second.Confidence != 0.5 || second.Source != "3" {
		t.Fatalf("second = conf %v source %q, want 0.5/3", second.Confidence, second.Source)
	}

	if third := resp.Items[2]; third.Label != nil || third.Source != "" {
		t.Fatalf("non-object item = %+v, want empty detection", third)
	}
}

func TestPTZProfile_WithDefaults(t *testing.T) {
	got := PTZProfile{Host: " 192.168.1.64 ", Protocol: " HTTPS ", Auth: "Basic"}.WithDefaults()
	want := PTZProfile{
		Host:     "192.168.1.64",
		Port:     DefaultPTZPort,
		Protocol: "https",
		Auth:     "basic",
		Channel:  DefaultPTZChannel,
		Timeout:  DefaultPTZTimeout,
	}
	if got != want {
		t.Fatalf("WithDefaults = %#v, want %#v", got, want)
	}

	kept := PTZProfile{Host: "cam", Port: 8080, Channel: 3, Timeout: 1.5}.WithDefaults()
	if kept.Port != 8080 || kept.Channel != 3 || kept.Timeout != 1.5 {
		t.Fatalf("WithDefaults overwrote explicit values: %#v", kept)
	}
	if kept.Protocol != DefaultPTZProtocol || kept.Auth != DefaultPTZAuth {
		t.Fatalf("WithDefaults protocol/auth = %q/%q, want defaults", kept.Protocol, kept.Auth)
	}
}
