package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix     = "SESSION#"
	skGeneration = "GENERATION#"
)

// DynamoAPI is the subset of *dynamodb.Client the store calls.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore implements JobStore using AWS DynamoDB.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// Compile-time interface check.
var _ JobStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// TableName returns the table the store writes to.
func (s *DynamoStore) TableName() string { return s.tableName }

// --- Internal helpers ---

func sessionPK(sessionID string) string {
	return pkPrefix + sessionID
}

func generationSK(jobID string) string {
	return skGeneration + jobID
}

func (s *DynamoStore) key(sessionID, jobID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK": &types.AttributeValueMemberS{Value: generationSK(jobID)},
	}
}

// expiresAt returns the Unix epoch timestamp for record expiration.
func (s *DynamoStore) expiresAt() int64 {
	return s.now().Add(JobTTL).Unix()
}

// putItem marshals a domain object and writes it with PK, SK, and TTL.
// The domain object should use dynamodbav:"-" for fields derived from PK/SK.
func (s *DynamoStore) putItem(ctx context.Context, pk, sk string, data any) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(s.expiresAt(), 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", pk, sk, err)
	}
	return nil
}

// getItem reads a single item and unmarshals it into out.
// Returns false if the item does not exist (out is not modified).
func (s *DynamoStore) getItem(ctx context.Context, pk, sk string, out any) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem PK=%s SK=%s: %w", pk, sk, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal PK=%s SK=%s: %w", pk, sk, err)
	}
	return true, nil
}

// --- Generation job operations ---

func (s *DynamoStore) PutJob(ctx context.Context, job *GenerationJob) error {
	if job.CreatedAt == 0 {
		job.CreatedAt = s.now().Unix()
	}
	if err := s.putItem(ctx, sessionPK(job.SessionID), generationSK(job.ID), job); err != nil {
		return fmt.Errorf("put generation job %s/%s: %w", job.SessionID, job.ID, err)
	}

	log.Debug().
		Str("sessionId", job.SessionID).
		Str("jobId", job.ID).
		Str("status", job.Status).
		Int("results", len(job.Results)).
		Msg("Generation job persisted")
	return nil
}

func (s *DynamoStore) GetJob(ctx context.Context, sessionID, jobID string) (*GenerationJob, error) {
	var job GenerationJob
	found, err := s.getItem(ctx, sessionPK(sessionID), generationSK(jobID), &job)
	if err != nil {
		return nil, fmt.Errorf("get generation job %s/%s: %w", sessionID, jobID, err)
	}
	if !found {
		log.Debug().Str("sessionId", sessionID).Str("jobId", jobID).Bool("found", false).Msg("GetJob: job not found")
		return nil, nil
	}

	job.ID = jobID
	job.SessionID = sessionID
	return &job, nil
}

// UpdateProgress writes the snapshot only while the job exists and is not
// terminal, so a late snapshot can never overwrite a finished job.
func (s *DynamoStore) UpdateProgress(ctx context.Context, sessionID, jobID string, p portrait.PipelineProgress) error {
	av, err := attributevalue.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 s.key(sessionID, jobID),
		UpdateExpression:    aws.String("SET progress = :p, #s = :running"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #s <> :complete AND #s <> :failed"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status", // "status" is a DynamoDB reserved word
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":        av,
			":running":  &types.AttributeValueMemberS{Value: StatusRunning},
			":complete": &types.AttributeValueMemberS{Value: StatusComplete},
			":failed":   &types.AttributeValueMemberS{Value: StatusFailed},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrJobClosed
		}
		return fmt.Errorf("update progress %s/%s: %w", sessionID, jobID, err)
	}
	return nil
}

func (s *DynamoStore) CompleteJob(ctx context.Context, job *GenerationJob, res *portrait.GenerationResult) error {
	job.Status = StatusFailed
	if res.Success {
		job.Status = StatusComplete
	}
	job.Results = res.Variations
	job.Analysis = res.Analysis
	job.TotalTimeMs = res.TotalTimeMs
	if !res.Success {
		job.Error = "no variation could be generated"
	}
	return s.PutJob(ctx, job)
}

func (s *DynamoStore) FailJob(ctx context.Context, job *GenerationJob, reason string) error {
	job.Status = StatusFailed
	job.Error = reason
	return s.PutJob(ctx, job)
}
