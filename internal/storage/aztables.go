package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"duelist/internal/task"
)

// Azure keeps the collection in an Azure Storage table. All tasks share one
// partition; the row key is the task id.
type Azure struct {
	table     *aztables.Client
	partition string
	log       *log.Entry
}

type taskEntity struct {
	aztables.Entity
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	Deadline    string `json:"deadline"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

// OpenAzure connects to the table named collection and creates it if needed.
func OpenAzure(ctx context.Context, connStr, collection string, logger *log.Entry) (*Azure, error) {
	if connStr == "" {
		return nil, errors.New("missing azure connection string")
	}
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			// One round trip per user action; the user retries.
			Retry: policy.RetryOptions{
				MaxRetries: -1,
				TryTimeout: 30 * time.Second,
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	table := svc.NewClient(collection)
	if _, err := table.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
			return nil, fmt.Errorf("create table %s: %w", collection, err)
		}
	}
	return &Azure{table: table, partition: collection, log: logger}, nil
}

func (a *Azure) Close() error { return nil }

func (a *Azure) Insert(ctx context.Context, f task.Fields) (string, error) {
	id := newID()
	doc := a.keys(id)
	doc["text"] = f.Text
	doc["completed"] = f.Completed
	doc["deadline"] = task.FormatDeadline(f.Deadline)
	doc["priority"] = f.Priority
	doc["description"] = f.Description
	data, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return "", err
	}
	if _, err := a.table.AddEntity(ctx, data, nil); err != nil {
		return "", mapAzureErr(err)
	}
	return id, nil
}

func (a *Azure) ListAll(ctx context.Context) ([]task.Task, error) {
	filter := "PartitionKey eq '" + a.partition + "'"
	pager := a.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []task.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapAzureErr(err)
		}
		for _, raw := range resp.Entities {
			t, err := a.decode(raw)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (a *Azure) UpdateFields(ctx context.Context, id string, p task.Patch) error {
	doc := a.keys(id)
	if p.Text != nil {
		doc["text"] = *p.Text
	}
	if p.Completed != nil {
		doc["completed"] = *p.Completed
	}
	if p.Deadline != nil {
		doc["deadline"] = task.FormatDeadline(*p.Deadline)
	}
	if p.Priority != nil {
		doc["priority"] = *p.Priority
	}
	if p.Description != nil {
		doc["description"] = *p.Description
	}
	data, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return err
	}
	// IfMatch any makes the merge fail on a missing row instead of inserting.
	etag := azcore.ETagAny
	_, err = a.table.UpdateEntity(ctx, data, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeMerge,
	})
	return mapAzureErr(err)
}

func (a *Azure) Delete(ctx context.Context, id string) error {
	_, err := a.table.DeleteEntity(ctx, a.partition, id, nil)
	return mapAzureErr(err)
}

func (a *Azure) keys(id string) map[string]any {
	return map[string]any{
		"PartitionKey": a.partition,
		"RowKey":       id,
	}
}

func (a *Azure) decode(raw []byte) (task.Task, error) {
	var ent taskEntity
	if err := sonic.ConfigStd.Unmarshal(raw, &ent); err != nil {
		return task.Task{}, fmt.Errorf("decode entity: %w", err)
	}
	return entityTask(ent, a.log), nil
}

func entityTask(ent taskEntity, logger *log.Entry) task.Task {
	return task.Task{
		ID:          ent.RowKey,
		Text:        ent.Text,
		Completed:   ent.Completed,
		Deadline:    decodeDeadline(logger, ent.RowKey, ent.Deadline),
		Priority:    ent.Priority,
		Description: ent.Description,
	}
}

func mapAzureErr(err error) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, respErr.ErrorCode)
	}
	return err
}
