package model

import "testing"

func TestIconTypeIsValid(t *testing.T) {
	tests := []struct {
		typ      IconType
		expected bool
	}{
		{Colorable, true},
		{ColorPreserving, true},
		{IconType("nocolors"), false},
		{IconType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.IsValid(); got != tt.expected {
				t.Errorf("IconType(%q).IsValid() = %v, want %v", tt.typ, got, tt.expected)
			}
		})
	}
}

func TestParseIconType(t *testing.T) {
	tests := []struct {
		in      string
		want    IconType
		wantErr bool
	}{
		{"colorable", Colorable, false},
		{"nocolors", Colorable, false},
		{"color-preserving", ColorPreserving, false},
		{"colors", ColorPreserving, false},
		{"mono", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIconType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIconType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIconType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		name string
		dims *Dimensions
		want float64
	}{
		{"nil", nil, 1},
		{"square", &Dimensions{Width: 24, Height: 24}, 1},
		{"portrait", &Dimensions{Width: 24, Height: 32}, 0.75},
		{"zero height", &Dimensions{Width: 24}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dims.AspectRatio(); got != tt.want {
				t.Errorf("AspectRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatFloat(t *testing.T) {
	if got := FormatFloat(0.75); got != "0.75" {
		t.Errorf("FormatFloat(0.75) = %q", got)
	}
	if got := FormatFloat(24); got != "24" {
		t.Errorf("FormatFloat(24) = %q", got)
	}
}
