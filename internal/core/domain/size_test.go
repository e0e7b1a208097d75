package domain

import "testing"

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1048576, "1 MB"},
		{10 * 1024 * 1024, "10 MB"},
		{1073741824, "1 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5120 GB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestImageMetadataDimensions(t *testing.T) {
	meta := ImageMetadata{Width: 640, Height: 480}
	if got := meta.Dimensions(); got != "640 × 480px" {
		t.Errorf("expected '640 × 480px', got %q", got)
	}
}
