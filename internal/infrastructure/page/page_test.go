package page

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain"
	"marketpulse/internal/scanner"
)

// stubRenderer returns canned HTML and records release-free usage.
type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

func pageSource() domain.Source {
	return domain.Source{
		Name:     "livewire",
		URL:      "https://livewire.example/",
		Kind:     domain.SourcePage,
		Language: "ko",
		Tier:     domain.TierTertiary,
	}
}

func TestPageScanExtractsArticleNodes(t *testing.T) {
	now := time.Now()
	stamp := now.Add(-30 * time.Minute).Format(time.RFC3339)

	html := fmt.Sprintf(`<html><body>
	  <article>
	    <h2>비트코인 급등, 주요 저항선 돌파</h2>
	    <p>비트코인 가격이 상승했다.</p>
	    <a href="/news/1001">more</a>
	    <time datetime="%s">30 minutes ago</time>
	  </article>
	  <article>
	    <h2>시장 일반 소식</h2>
	    <p>특별한 내용 없음.</p>
	    <a href="/news/1002">more</a>
	    <time datetime="%s">30 minutes ago</time>
	  </article>
	</body></html>`, stamp, stamp)

	renderer := &stubRenderer{html: html}
	sc := NewScanner(renderer, nil)

	articles, err := sc.Scan(context.Background(), scanner.Request{Source: pageSource(), Now: now})
	require.NoError(t, err)
	require.Len(t, articles, 1, "only the tracked-asset article survives")

	got := articles[0]
	assert.Equal(t, "비트코인 급등, 주요 저항선 돌파", got.Title)
	assert.Equal(t, "https://livewire.example/news/1001", got.URL)
	assert.Equal(t, "livewire.example", got.Source)
	assert.Equal(t, domain.TierTertiary, got.Tier)
	assert.Equal(t, 1, renderer.calls)
}

func TestPageScanFallsBackThroughSelectorSet(t *testing.T) {
	now := time.Now()

	html := `<html><body>
	  <div class="news-item">
	    <div class="title">Ethereum mainnet upgrade complete</div>
	    <div class="summary">ethereum validators confirm the fork</div>
	    <a href="https://livewire.example/news/2001">read</a>
	    <div class="time">2 minutes ago</div>
	  </div>
	</body></html>`

	sc := NewScanner(&stubRenderer{html: html}, nil)

	articles, err := sc.Scan(context.Background(), scanner.Request{Source: pageSource(), Now: now})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Ethereum mainnet upgrade complete", articles[0].Title)
}

func TestPageScanDropsStaleEntries(t *testing.T) {
	now := time.Now()
	stale := now.Add(-48 * time.Hour).Format(time.RFC3339)

	html := fmt.Sprintf(`<html><body>
	  <article>
	    <h2>bitcoin archive piece</h2>
	    <p>bitcoin two days ago</p>
	    <a href="/news/3001">more</a>
	    <time datetime="%s">two days ago</time>
	  </article>
	</body></html>`, stale)

	sc := NewScanner(&stubRenderer{html: html}, nil)

	articles, err := sc.Scan(context.Background(), scanner.Request{Source: pageSource(), Now: now})
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestPageScanRendererFailure(t *testing.T) {
	sc := NewScanner(&stubRenderer{err: errors.New("browser crashed")}, nil)

	_, err := sc.Scan(context.Background(), scanner.Request{Source: pageSource(), Now: time.Now()})
	assert.Error(t, err)
}
