package route

import "testing"

func TestExtractPageToken(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "next page", in: "https://x/api/v1/post/?page=2", want: "2", wantOK: true},
		{name: "page among other params", in: "https://x/api/v1/user/3/posts?format=json&page=4", want: "4", wantOK: true},
		{name: "first page has no param", in: "https://x/api/v1/post/", wantOK: false},
		{name: "empty page value", in: "https://x/api/v1/post/?page=", wantOK: false},
		{name: "empty input", in: "", wantOK: false},
		{name: "malformed url", in: "http://[::1", wantOK: false},
		{name: "malformed query", in: "https://x/?page=%zz", wantOK: false},
		{name: "relative url", in: "/api/v1/post/?page=3", want: "3", wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractPageToken(tc.in)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ExtractPageToken(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestPageTokenFromURL_Nil(t *testing.T) {
	if _, ok := PageTokenFromURL(nil); ok {
		t.Fatal("expected nil link to have no token")
	}
	link := "https://x/?page=7"
	if got, ok := PageTokenFromURL(&link); !ok || got != "7" {
		t.Fatalf("unexpected token: %q %v", got, ok)
	}
}
