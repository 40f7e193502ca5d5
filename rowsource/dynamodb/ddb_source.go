// Package dynamodb provides a rowsource.Source scanning a DynamoDB table.
//
// Each item becomes one row; attribute values map onto the scalar model
// (N parses to int when integral, else float; S to string; NULL to null).
// Scan order is whatever DynamoDB returns, which matches the contract of
// an externally-produced ordered row set.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/colgo/rowsource"
	"github.com/hupe1980/colgo/scalar"
)

// Client is the subset of the DynamoDB API the source needs.
type Client interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Source scans DynamoDB tables. The source identifier is the table name.
type Source struct {
	client Client
}

// New creates a DynamoDB row source.
func New(client Client) *Source {
	return &Source{client: client}
}

// NewFromConfig creates a Source using the SDK's default credential and
// region resolution.
func NewFromConfig(ctx context.Context) (*Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rowsource.ErrUnavailable, err)
	}
	return New(dynamodb.NewFromConfig(cfg)), nil
}

// Fetch scans the whole table, following pagination until exhausted.
func (s *Source) Fetch(ctx context.Context, identifier string) ([]scalar.Row, error) {
	var rows []scalar.Row
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(identifier),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			var notFound *types.ResourceNotFoundException
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: dynamodb table %s", rowsource.ErrNotFound, identifier)
			}
			return nil, fmt.Errorf("%w: dynamodb table %s: %w", rowsource.ErrUnavailable, identifier, err)
		}

		for _, item := range out.Items {
			row, err := itemToRow(item)
			if err != nil {
				return nil, rowsource.NewDecodeError(len(rows)+1, err)
			}
			rows = append(rows, row)
		}

		if len(out.LastEvaluatedKey) == 0 {
			return rows, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func itemToRow(item map[string]types.AttributeValue) (scalar.Row, error) {
	row := make(scalar.Row, len(item))
	for name, attr := range item {
		switch v := attr.(type) {
		case *types.AttributeValueMemberNULL:
			row[name] = scalar.Null()
		case *types.AttributeValueMemberS:
			row[name] = scalar.String(v.Value)
		case *types.AttributeValueMemberN:
			val, err := parseNumber(v.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", name, err)
			}
			row[name] = val
		default:
			return nil, fmt.Errorf("attribute %s: %w: %T", name, scalar.ErrUnsupportedKind, attr)
		}
	}
	return row, nil
}

func parseNumber(s string) (scalar.Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return scalar.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return scalar.Value{}, fmt.Errorf("malformed number %q: %w", s, err)
	}
	return scalar.Float(f), nil
}
