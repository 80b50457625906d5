package state

import (
	"testing"

	"github.com/five82/lookout/internal/device"
)

func floatPtr(f float64) *float64 { return &f }

func TestFormatDetection(t *testing.T) {
	cases := []struct {
		name string
		in   device.Detection
		want string
	}{
		{
			name: "full",
			in:   device.Detection{Label: strPtr("person"), Confidence: floatPtr(0.87), Source: "cam1", Track: "12"},
			want: "person 0.87 cam1 track:12",
		},
		{
			name: "missing label",
			in:   device.Detection{Confidence: floatPtr(0.5)},
			want: "object 0.5",
		},
		{
			name: "rounds confidence",
			in:   device.Detection{Label: strPtr("car"), Confidence: floatPtr(0.8349), Source: "mqtt"},
			want: "car 0.83 mqtt",
		},
		{
			name: "track without source",
			in:   device.Detection{Label: strPtr("vehicle"), Track: "3"},
			want: "vehicle track:3",
		},
		{
			name: "empty",
			in:   device.Detection{},
			want: "object",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDetection(tc.in); got != tc.want {
				t.Fatalf("FormatDetection = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatDetections(t *testing.T) {
	got := FormatDetections([]device.Detection{
		{Label: strPtr("person")},
		{Label: strPtr("car"), Confidence: floatPtr(1)},
	})
	if len(got) != 2 || got[0] != "person" || got[1] != "car 1" {
		t.Fatalf("FormatDetections = %#v, want [person, car 1]", got)
	}
	if out := FormatDetections(nil); len(out) != 0 {
		t.Fatalf("FormatDetections(nil) = %#v, want empty", out)
	}
}
