package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/cookbot/internal/model"
)

// Answerer answers a single query; the pipeline satisfies it
type Answerer interface {
	Answer(ctx context.Context, query model.Query) model.Answer
}

// QueryJob answers one query from a batch
type QueryJob struct {
	Index    int
	Query    model.Query
	Answerer Answerer
}

// Execute executes the query job
func (j *QueryJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &QueryResult{Index: j.Index, Query: j.Query, Error: err}
	}
	return &QueryResult{
		Index:  j.Index,
		Query:  j.Query,
		Answer: j.Answerer.Answer(ctx, j.Query),
	}
}

// QueryResult represents the result of a query job
type QueryResult struct {
	Index  int
	Query  model.Query
	Answer model.Answer
	Error  error
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many independent queries concurrently
type BatchProcessor struct {
	answerer    Answerer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(answerer Answerer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		answerer:    answerer,
		concurrency: concurrency,
	}
}

// ProcessQueries answers the queries concurrently and returns results in input order
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []model.Query) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, q := range queries {
		if !pool.Submit(&QueryJob{Index: i, Query: q, Answerer: b.answerer}) {
			break
		}
	}

	byIndex := make(map[int]*QueryResult, len(queries))
	for _, result := range pool.Wait() {
		r := result.(*QueryResult)
		byIndex[r.Index] = r
	}

	// Jobs dropped by cancellation still get a result slot
	out := make([]*QueryResult, len(queries))
	for i, q := range queries {
		if r, ok := byIndex[i]; ok {
			out[i] = r
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &QueryResult{Index: i, Query: q, Error: err}
	}
	return out
}

// ProcessFile reads queries from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line.
// An optional "| pot, frying pan" suffix declares the cookware for that query.
func ReadQueriesFromFile(filePath string) ([]model.Query, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []model.Query
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate identical lines
		if seen[line] {
			continue
		}
		seen[line] = true

		queries = append(queries, ParseQueryLine(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}

// ParseQueryLine splits "query text | item, item" into a Query
func ParseQueryLine(line string) model.Query {
	text, cookware, found := strings.Cut(line, "|")
	q := model.Query{Text: strings.TrimSpace(text)}
	if !found {
		return q
	}
	for _, item := range strings.Split(cookware, ",") {
		if item = strings.TrimSpace(item); item != "" {
			q.Cookware = append(q.Cookware, item)
		}
	}
	return q
}
