package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *Resolver {
	return New(Config{Root: "/testdata", PublicRoot: "public"})
}

func TestResolver_URLBase(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name    string
		owner   string
		project string
		want    string
	}{
		{"plain", "alice", "demo", "/alice/demo"},
		{"spaces", "alice", "My Project", "/alice/My%20Project"},
		{"lowercase spaces", "bob", "test project", "/bob/test%20project"},
		{"reserved characters", "alice", "a?b#c", "/alice/a%3Fb%23c"},
		{"percent", "alice", "100%", "/alice/100%25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.URLBase(tt.owner, tt.project))
		})
	}
}

func TestResolver_ImageFor(t *testing.T) {
	r := testResolver()
	const commitID = "16047dfc3ba3b4a8a6244dec410c0338b305a3ed"

	tests := []struct {
		name     string
		key      string
		category Category
		public   bool
		want     string
	}{
		{
			name:     "thumbnail",
			key:      commitID,
			category: CategoryThumbnails,
			want:     "/testdata/repos/alice/demo/thumbnails/" + commitID,
		},
		{
			name:     "public thumbnail",
			key:      commitID,
			category: CategoryThumbnails,
			public:   true,
			want:     "public/testdata/repos/alice/demo/thumbnails/" + commitID,
		},
		{
			name:     "desktop inspiration",
			key:      "happypanda.png",
			category: CategoryDesktopInspire,
			want:     "/testdata/repos/alice/demo/inspire/desktop/happypanda.png",
		},
		{
			name:     "mobile inspiration",
			key:      "happypanda.png",
			category: CategoryMobileInspire,
			want:     "/testdata/repos/alice/demo/inspire/mobile/happypanda.png",
		},
		{
			name:     "public mobile inspiration",
			key:      "happypanda.png",
			category: CategoryMobileInspire,
			public:   true,
			want:     "public/testdata/repos/alice/demo/inspire/mobile/happypanda.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ImageFor("alice", "demo", tt.key, tt.category, tt.public)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ImageForKeepsProjectNameUnescaped(t *testing.T) {
	r := testResolver()
	got := r.ImageFor("alice", "test project", "x.png", CategoryDesktopInspire, false)
	assert.Equal(t, "/testdata/repos/alice/test project/inspire/desktop/x.png", got)
}

func TestResolver_ImageForIsDeterministic(t *testing.T) {
	r := testResolver()
	a := r.ImageFor("alice", "demo", "k", CategoryThumbnails, false)
	b := r.ImageFor("alice", "demo", "k", CategoryThumbnails, false)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, r.ImageFor("bob", "demo", "k", CategoryThumbnails, false))
}

func TestResolver_ImageForUnknownCategoryPanics(t *testing.T) {
	r := testResolver()
	assert.Panics(t, func() {
		r.ImageFor("alice", "demo", "k", Category("banners"), false)
	})
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "file name", key: "happypanda.png"},
		{name: "commit hash", key: "16047dfc3ba3b4a8a6244dec410c0338b305a3ed"},
		{name: "dots inside name", key: "a..b.png"},
		{name: "empty", key: "", wantErr: true},
		{name: "dot", key: ".", wantErr: true},
		{name: "dot dot", key: "..", wantErr: true},
		{name: "parent traversal", key: "../../../bob/demo/thumbnails/x", wantErr: true},
		{name: "nested", key: "a/b.png", wantErr: true},
		{name: "absolute", key: "/etc/passwd", wantErr: true},
		{name: "backslash", key: `..\x`, wantErr: true},
		{name: "nul byte", key: "x\x00.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid asset key")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolver_ImageForRejectsEscapingKeys(t *testing.T) {
	r := testResolver()
	assert.Panics(t, func() {
		r.ImageFor("alice", "demo", "../../../bob/demo/thumbnails/x", CategoryThumbnails, false)
	})
	assert.Panics(t, func() {
		r.ImageFor("alice", "demo", "../../../../../../etc/passwd", CategoryThumbnails, true)
	})
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("banners")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown asset category")
}
