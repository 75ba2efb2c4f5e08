package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// Store is a Table on Azure Table Storage.
type Store struct {
	client *aztables.Client
}

func clientOptions() *aztables.ClientOptions {
	return &aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 15 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
}

// New connects to the table name using a storage connection string.
func New(connStr, name string) (*Store, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, clientOptions())
	if err != nil {
		return nil, fmt.Errorf("table client: %w", err)
	}
	return &Store{client: svc.NewClient(name)}, nil
}

// NewFromURL connects to a table by its full service URL, which must carry
// a SAS token.
func NewFromURL(serviceURL, name string) (*Store, error) {
	svc, err := aztables.NewServiceClientWithNoCredential(serviceURL, clientOptions())
	if err != nil {
		return nil, fmt.Errorf("table client: %w", err)
	}
	return &Store{client: svc.NewClient(name)}, nil
}

// CreateIfMissing creates the table. An existing table is not an error.
func (s *Store) CreateIfMissing(ctx context.Context) error {
	_, err := s.client.CreateTable(ctx, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Store) Latest(ctx context.Context, deviceID string) (Reading, error) {
	ent, err := s.client.GetEntity(ctx, deviceID, LatestRowKey, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return Reading{}, ErrNotFound
		}
		return Reading{}, err
	}
	return decodeEntity(ent.Value)
}

// Put merges r into the latest row and adds a history row.
func (s *Store) Put(ctx context.Context, r Reading) error {
	if r.DeviceID == "" {
		return errEmptyDevice
	}
	if r.Time.IsZero() {
		r.Time = time.Now()
	}

	latest, err := encodeEntity(r, LatestRowKey)
	if err != nil {
		return err
	}
	if _, err := s.client.UpsertEntity(ctx, latest, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeMerge}); err != nil {
		return fmt.Errorf("upsert latest reading: %w", err)
	}

	row, err := encodeEntity(r, historyRowKey(r.Time))
	if err != nil {
		return err
	}
	if _, err := s.client.UpsertEntity(ctx, row, nil); err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, deviceID string) ([]Reading, error) {
	filter := "PartitionKey eq '" + strings.ReplaceAll(deviceID, "'", "''") + "'"
	pager := s.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	type row struct {
		key string
		r   Reading
	}
	var rows []row
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			key, err := rowKey(e)
			if err != nil {
				return nil, err
			}
			if key == LatestRowKey {
				continue
			}
			r, err := decodeEntity(e)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row{key: key, r: r})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })
	out := make([]Reading, len(rows))
	for i, r := range rows {
		out[i] = r.r
	}
	return out, nil
}

func rowKey(data []byte) (string, error) {
	var e aztables.Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return "", err
	}
	return e.RowKey, nil
}
