// Package bigquery fetches question rows from the warehouse via the BigQuery REST API.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"

	"github.com/yash-quizizz/image-search/internal/domain/item"
)

// Result columns of the question query.
const (
	colQuizName     = "quiz_name"
	colImage        = "image"
	colQuestionText = "question_text"
	colOptionText   = "option_text"
	colQuestionID   = "questionId"
	colQualityScore = "quiz_quality_score"
)

const pollInterval = time.Second

// Config holds the warehouse query settings.
type Config struct {
	ProjectID string
	Location  string
	QueryFile string
	PageSize  int64
	Timeout   time.Duration
}

// Source runs the question query and maps rows to item.Text.
type Source struct {
	svc    *bq.Service
	cfg    Config
	logger *zap.Logger
}

// NewSource creates a BigQuery source. opts select credentials and endpoint.
func NewSource(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Source, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("bigquery: project id is required")
	}
	svc, err := bq.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: create service: %w", err)
	}
	return &Source{svc: svc, cfg: cfg, logger: logger}, nil
}

// FetchQuestions reads the SQL file, runs it as standard SQL and pages through every row.
func (s *Source) FetchQuestions(ctx context.Context) ([]item.Text, error) {
	sql, err := os.ReadFile(filepath.Clean(s.cfg.QueryFile))
	if err != nil {
		return nil, fmt.Errorf("bigquery: read query: %w", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	legacy := false
	resp, err := s.svc.Jobs.Query(s.cfg.ProjectID, &bq.QueryRequest{
		Query:        string(sql),
		UseLegacySql: &legacy,
		Location:     s.cfg.Location,
		MaxResults:   s.cfg.PageSize,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("bigquery: query: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("bigquery: query: %s", resp.Errors[0].Message)
	}

	pg := page{
		complete: resp.JobComplete,
		schema:   resp.Schema,
		rows:     resp.Rows,
		token:    resp.PageToken,
	}

	var jobID, location string
	if resp.JobReference != nil {
		jobID, location = resp.JobReference.JobId, resp.JobReference.Location
	}
	if location == "" {
		location = s.cfg.Location
	}

	for !pg.complete {
		if jobID == "" {
			return nil, errors.New("bigquery: incomplete job without reference")
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("bigquery: wait for job %s: %w", jobID, ctx.Err())
		case <-time.After(pollInterval):
		}
		if pg, err = s.results(ctx, jobID, location, ""); err != nil {
			return nil, err
		}
	}

	cols, err := columnIndex(pg.schema)
	if err != nil {
		return nil, err
	}

	out := make([]item.Text, 0, len(pg.rows))
	badScores := 0
	for {
		for _, row := range pg.rows {
			txt, raw, ok := cols.toText(row)
			if !ok {
				badScores++
				s.logger.Debug("Unparseable quality score, using 0",
					zap.String("question_id", txt.QuestionID),
					zap.String("value", raw))
			}
			out = append(out, txt)
		}
		if pg.token == "" {
			break
		}
		if pg, err = s.results(ctx, jobID, location, pg.token); err != nil {
			return nil, err
		}
	}

	if badScores > 0 {
		s.logger.Warn("Quality scores defaulted to 0", zap.Int("rows", badScores))
	}
	s.logger.Info("Warehouse query finished",
		zap.String("job_id", jobID),
		zap.Int("rows", len(out)),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}

type page struct {
	complete bool
	schema   *bq.TableSchema
	rows     []*bq.TableRow
	token    string
}

func (s *Source) results(ctx context.Context, jobID, location, token string) (page, error) {
	call := s.svc.Jobs.GetQueryResults(s.cfg.ProjectID, jobID).Context(ctx)
	if location != "" {
		call = call.Location(location)
	}
	if s.cfg.PageSize > 0 {
		call = call.MaxResults(s.cfg.PageSize)
	}
	if token != "" {
		call = call.PageToken(token)
	}
	resp, err := call.Do()
	if err != nil {
		return page{}, fmt.Errorf("bigquery: get results for job %s: %w", jobID, err)
	}
	return page{
		complete: resp.JobComplete,
		schema:   resp.Schema,
		rows:     resp.Rows,
		token:    resp.PageToken,
	}, nil
}

type columns struct {
	quizName, image, questionText, optionText, questionID, qualityScore int
}

func columnIndex(schema *bq.TableSchema) (columns, error) {
	if schema == nil {
		return columns{}, errors.New("bigquery: result has no schema")
	}
	pos := make(map[string]int, len(schema.Fields))
	for i, f := range schema.Fields {
		pos[f.Name] = i
	}

	var missing []string
	get := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	c := columns{
		quizName:     get(colQuizName),
		image:        get(colImage),
		questionText: get(colQuestionText),
		optionText:   get(colOptionText),
		questionID:   get(colQuestionID),
		qualityScore: get(colQualityScore),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("bigquery: result missing columns %v", missing)
	}
	return c, nil
}

// toText maps one row. A NULL score is 0 by definition; a non-numeric one is
// also 0 and reported through ok=false with the raw value.
func (c columns) toText(row *bq.TableRow) (txt item.Text, rawScore string, ok bool) {
	rawScore = cell(row, c.qualityScore)
	var score float64
	ok = true
	if rawScore != "" {
		var err error
		if score, err = strconv.ParseFloat(rawScore, 64); err != nil {
			score, ok = 0, false
		}
	}
	txt = item.Text{
		QuestionID:   cell(row, c.questionID),
		QuizName:     cell(row, c.quizName),
		URL:          cell(row, c.image),
		QuestionText: cell(row, c.questionText),
		OptionText:   cell(row, c.optionText),
		QualityScore: score,
	}
	return txt, rawScore, ok
}

// cell returns the string form of column i. NULL and absent cells become "".
func cell(row *bq.TableRow, i int) string {
	if row == nil || i < 0 || i >= len(row.F) || row.F[i] == nil || row.F[i].V == nil {
		return ""
	}
	switch v := row.F[i].V.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
