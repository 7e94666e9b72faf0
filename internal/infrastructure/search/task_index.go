package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// TaskIndex keeps a denormalised copy of tasks in Elasticsearch for full-text search.
type TaskIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	return &TaskIndex{es: es, index: index}
}

type taskDoc struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Assignee    string     `json:"assignee"`
	Labels      []string   `json:"labels"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toDoc(t *entity.Task) taskDoc {
	return taskDoc{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Assignee:    t.Assignee,
		Labels:      t.Labels,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDoc) task() *entity.Task {
	labels := d.Labels
	if labels == nil {
		labels = []string{}
	}
	return &entity.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      entity.TaskStatus(d.Status),
		Priority:    entity.TaskPriority(d.Priority),
		DueDate:     d.DueDate,
		Assignee:    d.Assignee,
		Labels:      labels,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Index upserts t under its id.
func (x *TaskIndex) Index(ctx context.Context, t *entity.Task) error {
	b, err := json.Marshal(toDoc(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: t.ID, Body: bytes.NewReader(b), Refresh: "false"}
	return x.do(ctx, req, false)
}

// Delete removes one task document. A missing document is not an error.
func (x *TaskIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	return x.do(ctx, req, true)
}

// DeleteByOwner removes every document owned by ownerID.
func (x *TaskIndex) DeleteByOwner(ctx context.Context, ownerID string) error {
	b, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"term": map[string]any{"created_by": ownerID},
		},
	})
	if err != nil {
		return err
	}
	req := esapi.DeleteByQueryRequest{Index: []string{x.index}, Body: bytes.NewReader(b), Conflicts: "proceed"}
	return x.do(ctx, req, true)
}

// Search runs a multi_match over title, description and labels restricted to ownerID.
func (x *TaskIndex) Search(ctx context.Context, ownerID, q string, limit int) ([]*entity.Task, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^3", "labels^2", "description"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"created_by": ownerID},
				},
			},
		},
		"size": limit,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, responseError(res)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Source taskDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.Task, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		// created_by must be a keyword field; re-checked here.
		if h.Source.CreatedBy != ownerID {
			continue
		}
		if h.Source.ID == "" {
			h.Source.ID = h.ID
		}
		out = append(out, h.Source.task())
	}
	return out, nil
}

func (x *TaskIndex) do(ctx context.Context, req esapi.Request, allowMissing bool) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 404 && allowMissing {
		return nil
	}
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

func responseError(res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("elasticsearch: %s: %s", res.Status(), bytes.TrimSpace(body))
}

const taskMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "status":      {"type": "keyword"},
      "priority":    {"type": "keyword"},
      "due_date":    {"type": "date"},
      "assignee":    {"type": "keyword"},
      "labels":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "created_by":  {"type": "keyword"},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *TaskIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(c),
		x.es.Indices.Create.WithBody(bytes.NewReader([]byte(taskMapping))),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError(res)
	}
	return nil
}
