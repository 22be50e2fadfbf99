package base

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	config := DetectConfig{
		Extensions:     []string{".usj", ".JSON"},
		ContentMarkers: []string{`"type"`, `"USJ"`},
		FormatName:     "usj",
	}

	tests := []struct {
		name string
		file string
		data string
		want bool
	}{
		{"markers", "doc", `{"type": "USJ", "content": []}`, true},
		{"markers after bom", "doc", "\xEF\xBB\xBF  {\"type\":\"USJ\"}", true},
		{"one marker missing", "doc", `{"type": "book"}`, false},
		{"extension", "doc.json", `[]`, true},
		{"extension case", "DOC.Json", ``, true},
		{"wrong extension", "doc.xml", `<usx/>`, false},
		{"no extension", "json", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(tt.file, []byte(tt.data), config)
			if r.Detected != tt.want {
				t.Fatalf("Detected = %v (%s), want %v", r.Detected, r.Reason, tt.want)
			}
			if r.Detected && r.Format != "usj" {
				t.Errorf("Format = %q", r.Format)
			}
		})
	}
}

func TestDetectCustomValidator(t *testing.T) {
	config := DetectConfig{
		FormatName: "usfm",
		CustomValidator: func(head []byte) (bool, string) {
			return head[0] == '\\', "starts with a marker"
		},
	}

	if r := Detect("x", []byte("\n\n\\p text"), config); !r.Detected || r.Reason != "starts with a marker" {
		t.Errorf("Detect() = %+v", r)
	}
	if r := Detect("x", []byte("text"), config); r.Detected {
		t.Errorf("Detect() = %+v", r)
	}
	if r := Detect("x", nil, config); r.Detected || !strings.Contains(r.Reason, "usfm") {
		t.Errorf("Detect(nil) = %+v", r)
	}
}

func TestSniff(t *testing.T) {
	long := strings.Repeat("a", SniffSize+10)
	if got := Sniff([]byte(long)); len(got) != SniffSize {
		t.Errorf("len(Sniff) = %d", len(got))
	}
	if got := string(Sniff([]byte("\xEF\xBB\xBF \r\n<usx"))); got != "<usx" {
		t.Errorf("Sniff = %q", got)
	}
}
