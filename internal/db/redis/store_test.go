package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/alphadoc-ai/alphadoc/internal/db"
	"github.com/alphadoc-ai/alphadoc/internal/domain/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- json.go tests ---

func TestJSONSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET" && cmd[1] == "alphadoc:documents:d1" && cmd[2] == "$"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	err := s.JSONSet(context.Background(), "alphadoc:documents:d1", "$", []byte(`{"id":"d1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.JSONSet(context.Background(), "k", "$", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected wrapped db.Error, got %v", err)
	}
}

func TestJSONSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("OK")),
		})

	s := NewStoreForTest(c)
	err := s.JSONSetMulti(context.Background(), []db.JSONSetItem{
		{Key: "k1", Path: "$", Data: []byte(`{"a":1}`)},
		{Key: "k2", Path: "$", Data: []byte(`{"a":2}`)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if err := s.JSONSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSetMulti_PartialFailureNamesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.JSONSetMulti(context.Background(), []db.JSONSetItem{
		{Key: "k1", Path: "$", Data: []byte(`{}`)},
		{Key: "k2", Path: "$", Data: []byte(`{}`)},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "k2") {
		t.Errorf("error %q does not name failing key", got)
	}
}

func TestJSONGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET" && cmd[1] == "k"
		})).
		Return(mock.Result(mock.RedisString(`[{"id":"d1"}]`)))

	s := NewStoreForTest(c)
	data, err := s.JSONGet(context.Background(), "k", "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `[{"id":"d1"}]` {
		t.Errorf("data = %s", data)
	}
}

func TestJSONGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET"
		})).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.JSONGet(context.Background(), "missing", "$")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "k")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want bool
	}{
		{"present", 1, true},
		{"absent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("EXISTS", "k")).
				Return(mock.Result(mock.RedisInt64(tt.n)))

			s := NewStoreForTest(c)
			got, err := s.Exists(context.Background(), "k")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:        "test:idx",
		StorageType: db.StorageJSON,
		Prefixes:    []string{"test:"},
		Fields: []db.IndexField{
			{Name: "$.field", Alias: "field", Type: db.IndexFieldTag},
		},
	}
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "test:idx",
		Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.DROPINDEX"
		})).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "missing")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name   string
		result rueidis.RedisResult
		want   bool
	}{
		{"present", mock.Result(mock.RedisArray(mock.RedisString("index_name"))), true},
		{"absent", mock.Result(mock.RedisError("Unknown Index name")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
					return cmd[0] == "FT.INFO"
				})).
				Return(tt.result)

			s := NewStoreForTest(c)
			got, err := s.IndexExists(context.Background(), "idx")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IndexExists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildCreateArgs_Validation(t *testing.T) {
	if _, err := buildCreateArgs(&db.IndexDefinition{Fields: []db.IndexField{{Name: "f"}}}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := buildCreateArgs(&db.IndexDefinition{Name: "idx"}); err == nil {
		t.Error("expected error for missing fields")
	}
}

func TestBuildFieldArgs_VectorHNSW(t *testing.T) {
	args, err := buildFieldArgs(&db.IndexField{
		Name:              "$.embedding",
		Alias:             "embedding",
		Type:              db.IndexFieldVector,
		VectorAlgo:        db.VectorHNSW,
		VectorDim:         768,
		VectorDistance:    db.DistanceCosine,
		VectorM:           16,
		VectorEFConstruct: 200,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"$.embedding", "AS", "embedding", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32", "DIM", "768", "DISTANCE_METRIC", "COSINE",
		"M", "16", "EF_CONSTRUCTION", "200",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildFieldArgs_VectorWithoutDim(t *testing.T) {
	_, err := buildFieldArgs(&db.IndexField{
		Name: "$.embedding",
		Type: db.IndexFieldVector,
	})
	if err == nil {
		t.Fatal("expected error for missing DIM")
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("alphadoc:chunks:c1"),
			mock.RedisArray(
				mock.RedisString("__embedding_score"),
				mock.RedisString("0.1"),
				mock.RedisString("$"),
				mock.RedisString(`{"id":"c1"}`),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "vector_index",
		Vector:       []float32{0.1, 0.2},
		K:            8,
		ReturnFields: []string{"$", "__embedding_score"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected total 1, got %d", result.Total)
	}
	if result.Entries[0].Key != "alphadoc:chunks:c1" {
		t.Errorf("key = %s", result.Entries[0].Key)
	}
	// cosine distance 0.1 maps to similarity 0.9
	if result.Entries[0].Score < 0.89 || result.Entries[0].Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", result.Entries[0].Score)
	}
	if _, ok := result.Entries[0].Fields["__embedding_score"]; ok {
		t.Error("score field should be consumed into Score, not left in Fields")
	}
	if result.Entries[0].Fields["$"] != `{"id":"c1"}` {
		t.Errorf("document field = %q", result.Entries[0].Fields["$"])
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "vector_index",
		Vector:    []float32{0.1},
		K:         8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	_, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{0.1}, K: 8})
	if err == nil {
		t.Error("expected error for empty index name")
	}

	_, err = s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", K: 8})
	if err == nil {
		t.Error("expected error for empty vector")
	}

	_, err = s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", Vector: []float32{0.1}, K: 0})
	if err == nil {
		t.Error("expected error for k=0")
	}
}

func TestSearchList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("doc:1"),
			mock.RedisArray(mock.RedisString("f"), mock.RedisString("v1")),
			mock.RedisString("doc:2"),
			mock.RedisArray(mock.RedisString("f"), mock.RedisString("v2")),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), "idx", "*", 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
	if result.Entries[0].Fields["f"] != "v1" || result.Entries[1].Fields["f"] != "v2" {
		t.Errorf("unexpected entries: %+v", result.Entries)
	}
}

func TestSearchCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	count, err := s.SearchCount(context.Background(), "idx", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

// --- Filter building tests ---

func TestBuildFilter_Empty(t *testing.T) {
	result := buildFilter(filter.Expression{})
	if result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestBuildFilter_MustAndMustNot(t *testing.T) {
	must, err := filter.NewMatch("section_header", "Overview")
	if err != nil {
		t.Fatal(err)
	}
	mustNot, err := filter.NewMatch("insight_types", "risk")
	if err != nil {
		t.Fatal(err)
	}
	expr, err := filter.NewExpression([]filter.Condition{must}, []filter.Condition{mustNot})
	if err != nil {
		t.Fatal(err)
	}

	result := buildFilter(expr)
	want := `@section_header:{Overview} -@insight_types:{risk}`
	if result != want {
		t.Errorf("filter = %q, want %q", result, want)
	}
}

func TestBuildFilter_EscapesTagValues(t *testing.T) {
	cond, err := filter.NewMatch("entities_name", "Acme-Corp Inc.")
	if err != nil {
		t.Fatal(err)
	}
	expr, err := filter.NewExpression([]filter.Condition{cond}, nil)
	if err != nil {
		t.Fatal(err)
	}

	result := buildFilter(expr)
	want := `@entities_name:{Acme\-Corp\ Inc\.}`
	if result != want {
		t.Errorf("filter = %q, want %q", result, want)
	}
}

func TestVectorToBytes(t *testing.T) {
	v := []float32{1.0, 2.0}
	b := vectorToBytes(v)
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
