package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rarepair-api/internal/domain"
)

// HospitalRepo provides typed DynamoDB operations for the hospitals table.
type HospitalRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewHospitalRepo(client *dynamodb.Client, tableName string) *HospitalRepo {
	return &HospitalRepo{client: client, tableName: tableName}
}

func (r *HospitalRepo) Put(ctx context.Context, h *domain.Hospital) error {
	item, err := attributevalue.MarshalMap(h)
	if err != nil {
		return fmt.Errorf("marshal hospital: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *HospitalRepo) Get(ctx context.Context, hospitalID string) (*domain.Hospital, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("hospital_id", hospitalID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("hospital not found: %w", domain.ErrNotFound)
	}
	var h domain.Hospital
	if err := attributevalue.UnmarshalMap(out.Item, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Scan lists every hospital, following LastEvaluatedKey across pages.
func (r *HospitalRepo) Scan(ctx context.Context) ([]domain.Hospital, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	var hospitals []domain.Hospital
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Hospital
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		hospitals = append(hospitals, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return hospitals, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *HospitalRepo) Update(ctx context.Context, hospitalID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("hospital_id", hospitalID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *HospitalRepo) HardDelete(ctx context.Context, hospitalID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("hospital_id", hospitalID),
	})
	return err
}
