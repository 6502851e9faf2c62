package mangadex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mangarank/lib/telemetry"

	_ "embed"

	"github.com/stretchr/testify/require"
)

//go:embed testdata/search_page1.html
var searchPage1 string

//go:embed testdata/search_page2.html
var searchPage2 string

//go:embed testdata/search_empty.html
var searchEmpty string

func TestExtractManga(t *testing.T) {
	items, err := extractManga(searchPage1)
	require.NoError(t, err)

	// the placeholder and health-check rows are skipped
	require.Equal(t, []Manga{
		{
			Path:    "/title/123/solo-sailing",
			Name:    "Solo Sailing",
			Rating:  9.02,
			Votes:   8042,
			Views:   12119272,
			Follows: 104773,
		},
		{
			Path:    "/title/88/moon-garden",
			Name:    "Moon Garden",
			Rating:  8.41,
			Votes:   120,
			Views:   2051118,
			Follows: 9344,
		},
	}, items)
}

func TestExtractMangaMissingIndicator(t *testing.T) {
	page := `<body><div id="content" role="main">
		<div class="border-bottom">
			<a href="/title/9/x" class="manga-cover"></a>
			<a class="manga_title" href="/title/9/x">X</a>
			<span title="Rating"></span> <span title="5 Votes">7.00</span>
			<span title="Follows"></span> 10
		</div>
	</div></body>`

	_, err := extractManga(page)
	require.ErrorIs(t, err, ErrMissingIndicator)
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Solo Sailing (Doujinshi)", "Solo Sailing"},
		{"Solo Sailing (doujinshi)", "Solo Sailing"},
		{"Paper Crane Diaries [Official Colored]", "Paper Crane Diaries"},
		{"Moon Garden (Web Comic) [Official Colored]", "Moon Garden"},
		{"Moon Garden", "Moon Garden"},
		{"(Doujinshi) In The Middle", "(Doujinshi) In The Middle"},
	}
	for _, c := range cases {
		got := CleanTitle(c.in)
		require.Equal(t, c.want, got, "input %q", c.in)
		// cleaning an already cleaned title must not change it
		require.Equal(t, got, CleanTitle(got), "input %q", c.in)
	}
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: baseUrl})
	require.NoError(t, err)
	return client
}

func TestSearchPagination(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/mangadex")
	defer cleanup()

	var requestedPages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, sortViewsDescending, r.URL.Query().Get("s"))

		page := r.URL.Query().Get("p")
		requestedPages = append(requestedPages, page)
		switch page {
		case "0":
			w.Write([]byte(searchPage1))
		case "1":
			w.Write([]byte(searchPage2))
		default:
			w.Write([]byte(searchEmpty))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	results, err := client.Search(context.Background(), SearchOptions{Pages: 10})
	require.NoError(t, err)

	// the crawl stops at the first empty page, well before the page budget
	require.Equal(t, []string{"0", "1", "2"}, requestedPages)

	require.Len(t, results, 3)
	require.Equal(t, "/title/123/solo-sailing", results[0].Path)
	require.Equal(t, "/title/88/moon-garden", results[1].Path)
	require.Equal(t, "/title/301/paper-crane-diaries", results[2].Path)

	// page 2 repeats solo-sailing with different stats, the first
	// occurrence wins
	require.Equal(t, 9.02, results[0].Rating)
	require.Equal(t, 8042, results[0].Votes)
}

func TestSearchPageTagParams(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		require.Equal(t, "22,4", r.URL.Query().Get("tags_inc"))
		require.Equal(t, "7", r.URL.Query().Get("tags_exc"))
		w.Write([]byte(searchEmpty))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.SearchPage(context.Background(), 0, []string{"4", "22"}, []string{"7"})
	require.NoError(t, err)
	require.NotEmpty(t, query)
}

func TestSearchFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Search(context.Background(), SearchOptions{Pages: 3})
	require.ErrorContains(t, err, "unexpected status")
}

func TestLoginCookieRidesAlong(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ajax/actions.ajax.php":
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "login", r.URL.Query().Get("function"))
			require.NoError(t, r.ParseForm())
			require.Equal(t, "reader", r.PostForm.Get("login_username"))
			http.SetCookie(w, &http.Cookie{Name: "mangadex_session", Value: "abc123"})
		case "/search":
			cookie, err := r.Cookie("mangadex_session")
			if err != nil || cookie.Value != "abc123" {
				http.Error(w, "unauthenticated", http.StatusForbidden)
				return
			}
			w.Write([]byte(searchEmpty))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Login(context.Background(), "reader", "hunter2")
	require.NoError(t, err)

	results, err := client.Search(context.Background(), SearchOptions{Pages: 1})
	require.NoError(t, err)
	require.Empty(t, results)
}
