package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/XZXY-AI/reddit-crawler/internal/models"
)

// stubClock returns a fixed time that tests can advance
type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func fixedClock() *stubClock {
	return &stubClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleRecords() []models.PostRecord {
	return []models.PostRecord{
		{
			Title:        "Rust 编程 <tips> & tricks",
			Body:         "正文内容 ✓",
			Score:        42,
			CommentCount: 1,
			CreatedAt:    "2024-01-15 10:30:00",
			Author:       "alice",
			Subreddit:    "rust",
			IsSelfPost:   true,
			Comments: []models.CommentRecord{
				{Author: models.DeletedAuthor, Body: "评论", Score: 3, CreatedAt: "2024-01-15 10:31:00"},
			},
		},
	}
}

func TestKey(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 5, 0, time.Local)

	testCases := []struct {
		name   string
		req    models.SearchRequest
		expect string
	}{
		{
			name:   "keyword includes time filter and sort",
			req:    models.SearchRequest{Mode: models.ModeKeyword, Query: "rust", TimeFilter: "week", Sort: "new"},
			expect: "20240115/keyword/rust_week_new_103005.json",
		},
		{
			name:   "keyword defaults",
			req:    models.SearchRequest{Mode: models.ModeKeyword, Query: "rust"},
			expect: "20240115/keyword/rust_all_relevance_103005.json",
		},
		{
			name:   "user omits filter and sort",
			req:    models.SearchRequest{Mode: models.ModeUser, Query: "spez", Sort: "new"},
			expect: "20240115/user/spez_103005.json",
		},
		{
			name:   "subreddit",
			req:    models.SearchRequest{Mode: models.ModeSubreddit, Query: "python", Sort: "top"},
			expect: "20240115/subreddit/python_103005.json",
		},
		{
			name:   "non-ascii query kept",
			req:    models.SearchRequest{Mode: models.ModeKeyword, Query: "编程", TimeFilter: "day", Sort: "hot"},
			expect: "20240115/keyword/编程_day_hot_103005.json",
		},
		{
			name:   "path separators replaced",
			req:    models.SearchRequest{Mode: models.ModeUser, Query: "../../etc/passwd"},
			expect: "20240115/user/.._.._etc_passwd_103005.json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Key(now, tc.req); got != tc.expect {
				t.Errorf("Expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestEncodePreservesText(t *testing.T) {
	data, err := Encode(sampleRecords())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := string(data)
	for _, literal := range []string{"Rust 编程 <tips> & tricks", "正文内容 ✓", `"标题"`, `"评论"`} {
		if !strings.Contains(text, literal) {
			t.Errorf("Expected literal %q in output", literal)
		}
	}
	if strings.Contains(text, `\u`) {
		t.Error("Expected no \\u escapes in output")
	}
	if !strings.Contains(text, "\n  {\n    \"标题\"") {
		t.Errorf("Expected 2-space indentation, got:\n%s", text)
	}

	var decoded []models.PostRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	want := sampleRecords()
	if decoded[0].Title != want[0].Title || decoded[0].Body != want[0].Body ||
		decoded[0].Comments[0].Body != want[0].Comments[0].Body ||
		decoded[0].Comments[0].Author != want[0].Comments[0].Author {
		t.Errorf("Round trip mismatch: %+v", decoded[0])
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty array, got %q", data)
	}
}

func TestWriterFileSystem(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	clock := fixedClock()
	writer := NewWriter(store, clock)
	req := models.SearchRequest{Mode: models.ModeKeyword, Query: "rust", TimeFilter: "week", Sort: "new"}

	first, err := writer.Write(context.Background(), sampleRecords(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !filepath.IsAbs(first) {
		t.Errorf("Expected absolute path, got %s", first)
	}
	expected := filepath.Join(store.Root(), "20240115", "keyword", "rust_week_new_103000.json")
	if first != expected {
		t.Errorf("Expected %s, got %s", expected, first)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("Unexpected read error: %v", err)
	}
	var decoded []models.PostRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Title != "Rust 编程 <tips> & tricks" {
		t.Errorf("Unexpected snapshot content: %+v", decoded)
	}

	// a second write in the same directory one second later
	clock.Advance(time.Second)
	second, err := writer.Write(context.Background(), sampleRecords(), req)
	if err != nil {
		t.Fatalf("Unexpected error on second write: %v", err)
	}
	if second == first {
		t.Error("Expected a distinct file one second later")
	}

	// the same second overwrites
	if _, err := writer.Write(context.Background(), nil, req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(store.Root(), "20240115", "keyword"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 files, got %d", len(entries))
	}
	overwritten, _ := os.ReadFile(second)
	if strings.TrimSpace(string(overwritten)) != "[]" {
		t.Errorf("Expected the same-second write to overwrite, got %s", overwritten)
	}
}

func TestWriterConcurrentDirectoryCreation(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	writer := NewWriter(store, fixedClock())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := models.SearchRequest{Mode: models.ModeSubreddit, Query: fmt.Sprintf("sub%d", i)}
			if _, err := writer.Write(context.Background(), sampleRecords(), req); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(store.Root(), "20240115", "subreddit"))
	if len(entries) != 16 {
		t.Errorf("Expected 16 files, got %d", len(entries))
	}
}

func TestWriterStaysInsideRoot(t *testing.T) {
	store, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	writer := NewWriter(store, fixedClock())

	p, err := writer.Write(context.Background(), nil, models.SearchRequest{Mode: models.ModeUser, Query: "../../escape"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rel, err := filepath.Rel(store.Root(), p)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Errorf("Expected %s to be inside %s", p, store.Root())
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestWriterS3(t *testing.T) {
	client := &fakeS3{}
	writer := NewWriter(NewS3Store(client, "snapshots", "reddit"), fixedClock())

	location, err := writer.Write(context.Background(), sampleRecords(), models.SearchRequest{Mode: models.ModeUser, Query: "spez"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if location != "s3://snapshots/reddit/20240115/user/spez_103000.json" {
		t.Errorf("Unexpected location %s", location)
	}
	if *client.input.Bucket != "snapshots" || *client.input.Key != "reddit/20240115/user/spez_103000.json" {
		t.Errorf("Unexpected put input: %s/%s", *client.input.Bucket, *client.input.Key)
	}
	if *client.input.ContentLength != int64(len(client.body)) {
		t.Errorf("Content length %d does not match body %d", *client.input.ContentLength, len(client.body))
	}
	if !bytes.Contains(client.body, []byte("正文内容")) {
		t.Error("Expected snapshot body to be uploaded")
	}
}

func TestWriterS3Error(t *testing.T) {
	writer := NewWriter(NewS3Store(&fakeS3{err: errors.New("access denied")}, "b", ""), fixedClock())

	if _, err := writer.Write(context.Background(), nil, models.SearchRequest{Mode: models.ModeUser, Query: "x"}); err == nil {
		t.Fatal("Expected upload error to propagate")
	}
}
