package fetch

import (
	"strings"
	"testing"
)

func TestExtract_TitleAndBlocks(t *testing.T) {
	page := `<html><head><title>Solar Report 2026</title></head><body>
		<h1>Solar adoption</h1>
		<p>Residential installations grew twelve percent.</p>
		<p>Utilities expanded grid capacity in response.</p>
	</body></html>`

	got, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.Title != "Solar Report 2026" {
		t.Errorf("title: got %q", got.Title)
	}
	blocks := strings.Split(got.Text, "\n\n")
	if len(blocks) != 3 {
		t.Fatalf("expected heading plus two paragraphs, got %d blocks: %q", len(blocks), got.Text)
	}
	if blocks[1] != "Residential installations grew twelve percent." {
		t.Errorf("unexpected block: %q", blocks[1])
	}
}

func TestExtract_SkipsScriptAndNav(t *testing.T) {
	page := `<html><body>
		<nav>Home | About | Contact</nav>
		<script>var tracking = "secret";</script>
		<style>.x { color: red }</style>
		<p>Actual article text.</p>
		<footer>Copyright</footer>
	</body></html>`

	got, err := Extract(page)
	if err != nil {
		t.Fatal(err)
	}
	for _, junk := range []string{"tracking", "color: red", "About", "Copyright"} {
		if strings.Contains(got.Text, junk) {
			t.Errorf("non-content text leaked: %q", junk)
		}
	}
	if !strings.Contains(got.Text, "Actual article text.") {
		t.Errorf("article text missing from %q", got.Text)
	}
}

func TestExtract_MetaFields(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="OG Title">
		<meta name="author" content="Jane Writer">
		<meta property="article:published_time" content="2026-03-15T10:00:00Z">
	</head><body><p>Body.</p></body></html>`

	got, err := Extract(page)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "OG Title" {
		t.Errorf("og:title not used: %q", got.Title)
	}
	if got.Author != "Jane Writer" {
		t.Errorf("author: got %q", got.Author)
	}
	if got.PublishedAt == nil || got.PublishedAt.Year() != 2026 || got.PublishedAt.Month() != 3 {
		t.Errorf("published_time not parsed: %v", got.PublishedAt)
	}
}

func TestExtract_TitleTagBeatsOG(t *testing.T) {
	page := `<html><head><title>Tag Title</title>
		<meta property="og:title" content="OG Title">
	</head><body><p>Body.</p></body></html>`

	got, err := Extract(page)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Tag Title" {
		t.Errorf("first-seen title wins, got %q", got.Title)
	}
}

func TestExtract_PaywallDetection(t *testing.T) {
	gated := `<html><body><p>Subscribe to continue reading this article.</p></body></html>`
	got, err := Extract(gated)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Paywalled {
		t.Error("short subscription prompt should flag as paywalled")
	}

	// A long article mentioning subscriptions is not gated.
	long := "<html><body><p>" + strings.Repeat("Plenty of real article text here. ", 60) +
		"You can subscribe to continue receiving our newsletter.</p></body></html>"
	got, err = Extract(long)
	if err != nil {
		t.Fatal(err)
	}
	if got.Paywalled {
		t.Error("long article must not flag as paywalled")
	}

	meta := `<html><head><meta name="isAccessibleForFree" content="false"></head>
		<body><p>Preview text.</p></body></html>`
	got, err = Extract(meta)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Paywalled {
		t.Error("isAccessibleForFree=false should flag as paywalled")
	}
}

func TestExtract_WhitespaceCollapsed(t *testing.T) {
	page := "<html><body><p>spaced   \n\t  out     text</p></body></html>"
	got, err := Extract(page)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "spaced out text" {
		t.Errorf("whitespace not collapsed: %q", got.Text)
	}
}
