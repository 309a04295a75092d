package pipeline

import (
	"reflect"
	"testing"
)

func TestFilterDownloads(t *testing.T) {
	tests := []struct {
		name  string
		links []string
		host  string
		want  []string
	}{
		{
			name: "suffix and external host kept, nav and same-site rejected",
			links: []string{
				"https://www.ravelry.com/patterns/library/ball/comments",
				"https://example.com/pattern.pdf",
				"https://www.ravelry.com/dls/designer/12345",
				"https://blog.example.org/free-pattern",
			},
			host: "www.ravelry.com",
			want: []string{
				"https://example.com/pattern.pdf",
				"https://blog.example.org/free-pattern",
			},
		},
		{
			name:  "relative pdf and external page kept in order",
			links: []string{"/patterns/1.pdf", "/patterns/1/comments", "http://otherblog.com/pattern"},
			host:  "www.ravelry.com",
			want:  []string{"/patterns/1.pdf", "http://otherblog.com/pattern"},
		},
		{
			name:  "same-site pdf kept by suffix",
			links: []string{"https://www.ravelry.com/files/octopus.pdf"},
			host:  "www.ravelry.com",
			want:  []string{"https://www.ravelry.com/files/octopus.pdf"},
		},
		{
			name:  "relative zip kept, relative page dropped",
			links: []string{"/files/pattern.zip", "/patterns/library/cube"},
			host:  "www.ravelry.com",
			want:  []string{"/files/pattern.zip"},
		},
		{
			name:  "nav denylist beats file suffix",
			links: []string{"https://example.com/threads/archive.pdf"},
			host:  "www.ravelry.com",
			want:  []string{},
		},
		{
			name:  "order and duplicates preserved",
			links: []string{"https://a.example/p.pdf", "https://b.example/x", "https://a.example/p.pdf"},
			host:  "www.ravelry.com",
			want:  []string{"https://a.example/p.pdf", "https://b.example/x", "https://a.example/p.pdf"},
		},
		{
			name:  "blank entries skipped",
			links: []string{"", "  ", "https://example.com/a.pdf"},
			host:  "www.ravelry.com",
			want:  []string{"https://example.com/a.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDownloads(tt.links, tt.host)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
