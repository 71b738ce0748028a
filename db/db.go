package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/jsphweid/parle/config"
	"github.com/jsphweid/parle/model"
)

// Manifests records one item per compressed file in a DynamoDB table keyed
// by the string attribute PK.
type Manifests struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func New(cfg config.ManifestConfig) (*Manifests, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("could not create a new DynamoDB session: %w", err)
	}
	return NewWithClient(dynamodb.New(sess), cfg.Table), nil
}

func NewWithClient(client dynamodbiface.DynamoDBAPI, table string) *Manifests {
	return &Manifests{client: client, table: table}
}

func (m *Manifests) Put(ctx context.Context, rec model.Manifest) error {
	item := map[string]*dynamodb.AttributeValue{
		"PK":            {S: aws.String(rec.Name)},
		"Mode":          {S: aws.String(string(rune(rec.Mode)))},
		"RawSize":       {N: aws.String(strconv.FormatInt(rec.RawSize, 10))},
		"ContainerSize": {N: aws.String(strconv.FormatInt(rec.ContainerSize, 10))},
		"Digest":        {S: aws.String(rec.Digest)},
		"Workers":       {N: aws.String(strconv.Itoa(rec.Workers))},
		"CreatedAt":     {S: aws.String(rec.CreatedAt.UTC().Format(time.RFC3339))},
	}
	_, err := m.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("error from DynamoDB putting %s: %w", rec.Name, err)
	}
	return nil
}

// Get returns the record for name; ok is false when there is none.
func (m *Manifests) Get(ctx context.Context, name string) (rec model.Manifest, ok bool, err error) {
	out, err := m.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(m.table),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(name)},
		},
	})
	if err != nil {
		return rec, false, fmt.Errorf("error from DynamoDB getting %s: %w", name, err)
	}
	if len(out.Item) == 0 {
		return rec, false, nil
	}
	rec, err = parseItem(out.Item)
	if err != nil {
		return rec, false, fmt.Errorf("bad manifest item %s: %w", name, err)
	}
	return rec, true, nil
}

func parseItem(item map[string]*dynamodb.AttributeValue) (model.Manifest, error) {
	var rec model.Manifest
	rec.Name = stringAttr(item, "PK")
	rec.Digest = stringAttr(item, "Digest")
	if mode := stringAttr(item, "Mode"); len(mode) == 1 {
		rec.Mode = model.Mode(mode[0])
	}

	var err error
	if rec.RawSize, err = intAttr(item, "RawSize"); err != nil {
		return rec, err
	}
	if rec.ContainerSize, err = intAttr(item, "ContainerSize"); err != nil {
		return rec, err
	}
	workers, err := intAttr(item, "Workers")
	if err != nil {
		return rec, err
	}
	rec.Workers = int(workers)
	if created := stringAttr(item, "CreatedAt"); created != "" {
		if rec.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func stringAttr(item map[string]*dynamodb.AttributeValue, name string) string {
	if v, ok := item[name]; ok && v.S != nil {
		return *v.S
	}
	return ""
}

func intAttr(item map[string]*dynamodb.AttributeValue, name string) (int64, error) {
	v, ok := item[name]
	if !ok || v.N == nil {
		return 0, nil
	}
	n, err := strconv.ParseInt(*v.N, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return n, nil
}
