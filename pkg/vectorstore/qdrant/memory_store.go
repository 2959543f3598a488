package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant server address (e.g., "https://example.qdrant.io:6334").
	URL string

	// CollectionName is the collection holding user preference memories.
	CollectionName string

	// APIKey is optional API key for authentication.
	APIKey string

	// VectorSize is the embedding dimension used when the collection has to
	// be created.
	VectorSize uint64
}

// MemoryEntry is one stored user preference or fact.
type MemoryEntry struct {
	ID      string
	UserID  string
	Kind    string
	Content string
	Score   float32
}

// MemoryStore persists long-lived user preferences in a Qdrant collection,
// one point per remembered fact, filtered by user on search.
type MemoryStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func New(cfg Config) (*MemoryStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	parsedURL := cfg.URL
	if !strings.HasPrefix(parsedURL, "http://") && !strings.HasPrefix(parsedURL, "https://") {
		parsedURL = "https://" + parsedURL
	}

	u, err := url.Parse(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	useTLS := u.Scheme == "https"

	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	size := cfg.VectorSize
	if size == 0 {
		size = 768
	}

	return &MemoryStore{
		client:         qdrantClient,
		collectionName: cfg.CollectionName,
		vectorSize:     size,
	}, nil
}

// EnsureCollection creates the memory collection if it does not exist yet.
func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant collection create failed: %w", err)
	}
	return nil
}

// Save upserts one preference memory for a user.
func (s *MemoryStore) Save(ctx context.Context, entry MemoryEntry, vector []float32) error {
	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"user_id": entry.UserID,
					"kind":    entry.Kind,
					"content": entry.Content,
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Search returns the user's stored memories closest to the query vector.
func (s *MemoryStore) Search(ctx context.Context, userID string, vector []float32, limit int) ([]MemoryEntry, error) {
	limitUint64 := uint64(limit)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitUint64,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				{
					ConditionOneOf: &qdrant.Condition_Field{
						Field: &qdrant.FieldCondition{
							Key:   "user_id",
							Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: userID}},
						},
					},
				},
			},
		},
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	results := make([]MemoryEntry, 0, len(points))
	for _, point := range points {
		entry := MemoryEntry{
			UserID: userID,
			Score:  point.Score,
		}
		if point.Id != nil {
			if id := point.Id.GetUuid(); id != "" {
				entry.ID = id
			} else if num := point.Id.GetNum(); num != 0 {
				entry.ID = fmt.Sprintf("%d", num)
			}
		}
		if point.Payload != nil {
			if v, ok := point.Payload["content"]; ok {
				entry.Content = v.GetStringValue()
			}
			if v, ok := point.Payload["kind"]; ok {
				entry.Kind = v.GetStringValue()
			}
		}
		results = append(results, entry)
	}

	return results, nil
}

// Close releases the underlying gRPC connection.
func (s *MemoryStore) Close() error {
	return s.client.Close()
}
