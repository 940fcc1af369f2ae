package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rarepair-api/internal/domain"
)

// MatchRepo provides typed DynamoDB operations for the matches table.
// PK: match_id; GSIs donor_id-index and recipient_id-index serve the
// participant search.
type MatchRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMatchRepo(client *dynamodb.Client, tableName string) *MatchRepo {
	return &MatchRepo{client: client, tableName: tableName}
}

func (r *MatchRepo) Put(ctx context.Context, m *domain.Match) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MatchRepo) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("match_id", matchID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("match not found: %w", domain.ErrNotFound)
	}
	var m domain.Match
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CommitScore writes the scoring result and the status transition as one
// UpdateItem, so the four fields commit together or not at all. The caller
// supplies updatedAt so the stored stamp matches the match it returns.
// Fails with domain.ErrNotFound if the match was deleted in the meantime.
func (r *MatchRepo) CommitScore(ctx context.Context, matchID string, score float64, decision, explanation, status string, updatedAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldSurvivalScore:      score,
		fieldAllocationDecision: decision,
		fieldExplanation:        explanation,
		fieldStatus:             status,
		fieldUpdatedAt:          updatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("match_id", matchID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(match_id)"),
	})
	return mapConditionalErr(err)
}

// UpdateStatus overwrites the match status (administrative edit).
func (r *MatchRepo) UpdateStatus(ctx context.Context, matchID, status string, updatedAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:    status,
		fieldUpdatedAt: updatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("match_id", matchID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(match_id)"),
	})
	return mapConditionalErr(err)
}

// HardDelete removes the match permanently.
func (r *MatchRepo) HardDelete(ctx context.Context, matchID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("match_id", matchID),
		ConditionExpression: aws.String("attribute_exists(match_id)"),
	})
	return mapConditionalErr(err)
}

// FindByParticipant returns matches filtered by donor and/or recipient id.
// With a donor id it queries the donor GSI (filtering recipient if also
// given); with only a recipient id it queries the recipient GSI; with
// neither it scans the table. Every read path follows LastEvaluatedKey so
// result sets past the 1MB page limit come back whole. Ordering is the
// caller's concern.
func (r *MatchRepo) FindByParticipant(ctx context.Context, donorID, recipientID string) ([]domain.Match, error) {
	switch {
	case donorID != "":
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("donor_id-index"),
			KeyConditionExpression: aws.String("donor_id = :d"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":d": &types.AttributeValueMemberS{Value: donorID},
			},
		}
		if recipientID != "" {
			input.FilterExpression = aws.String("recipient_id = :r")
			input.ExpressionAttributeValues[":r"] = &types.AttributeValueMemberS{Value: recipientID}
		}
		return r.queryAll(ctx, input)
	case recipientID != "":
		return r.queryAll(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("recipient_id-index"),
			KeyConditionExpression: aws.String("recipient_id = :r"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":r": &types.AttributeValueMemberS{Value: recipientID},
			},
		})
	default:
		var matches []domain.Match
		input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
		for {
			out, err := r.client.Scan(ctx, input)
			if err != nil {
				return nil, err
			}
			page, err := unmarshalMatches(out.Items)
			if err != nil {
				return nil, err
			}
			matches = append(matches, page...)
			if len(out.LastEvaluatedKey) == 0 {
				break
			}
			input.ExclusiveStartKey = out.LastEvaluatedKey
		}
		return matches, nil
	}
}

func (r *MatchRepo) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]domain.Match, error) {
	var matches []domain.Match
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		page, err := unmarshalMatches(out.Items)
		if err != nil {
			return nil, err
		}
		matches = append(matches, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return matches, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func unmarshalMatches(items []map[string]types.AttributeValue) ([]domain.Match, error) {
	var matches []domain.Match
	if err := attributevalue.UnmarshalListOfMaps(items, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// mapConditionalErr translates a failed attribute_exists condition into
// domain.ErrNotFound.
func mapConditionalErr(err error) error {
	if err == nil {
		return nil
	}
	var ccfe *types.ConditionalCheckFailedException
	if errors.As(err, &ccfe) {
		return fmt.Errorf("match not found: %w", domain.ErrNotFound)
	}
	return err
}
