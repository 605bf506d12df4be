package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// PartitionKey holds "<len(bookstore)>#<bookstore>#<date>" in the reservations table.
	PartitionKey = "pk"
	// SortKey holds the slot label in the reservations table.
	SortKey = "sk"

	BookstoreNameAttr = "BookstoreName"
	DateAttr          = "Date"
	TimeAttr          = "Time"
	CustomerAttr      = "Customer"
	TimestampAttr     = "Timestamp"
	EmailAttr         = "Email"
)

type Store struct {
	client            API
	awsCfg            *aws.Config
	reservationsTable string
	bookstoresTable   string
	opts              *Options
}

// New creates a Store. Call [Store.Connect] before use.
func New(awsCfg *aws.Config, reservationsTable, bookstoresTable string, opts ...Option) *Store {
	options := newOptions()
	for _, o := range opts {
		o(options)
	}

	return &Store{
		awsCfg:            awsCfg,
		reservationsTable: reservationsTable,
		bookstoresTable:   bookstoresTable,
		opts:              options,
	}
}

// Connect builds the DynamoDB client from the AWS config, or adopts the one
// injected with [WithAPI].
func (s *Store) Connect() error {
	if s.reservationsTable == "" {
		return errors.New("reservations table name cannot be empty")
	}
	if s.bookstoresTable == "" {
		return errors.New("bookstores table name cannot be empty")
	}

	if s.opts.api != nil {
		s.client = s.opts.api
		return nil
	}
	if s.awsCfg == nil {
		return errors.New("aws config cannot be nil")
	}

	s.client = dynamodb.NewFromConfig(*s.awsCfg, func(o *dynamodb.Options) {
		if s.opts.endpointURL != "" {
			o.BaseEndpoint = aws.String(s.opts.endpointURL)
		}
	})
	return nil
}

// Init checks that both tables exist, are active and carry the expected keys.
func (s *Store) Init(ctx context.Context) error {
	if err := s.verifyTable(ctx, s.reservationsTable, PartitionKey, SortKey); err != nil {
		return err
	}
	return s.verifyTable(ctx, s.bookstoresTable, BookstoreNameAttr, "")
}

func (s *Store) verifyTable(ctx context.Context, table, hashKey, rangeKey string) error {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		var notFound *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("table %s does not exist", table)
		}
		return fmt.Errorf("failed to describe table %s: %w", table, err)
	}

	desc := out.Table
	if desc == nil || len(desc.KeySchema) == 0 {
		return fmt.Errorf("table %s has no key schema", table)
	}

	if got := aws.ToString(desc.KeySchema[0].AttributeName); got != hashKey {
		return fmt.Errorf("table %s has partition key %s, expected %s", table, got, hashKey)
	}

	if rangeKey != "" {
		if len(desc.KeySchema) < 2 {
			return fmt.Errorf("table %s has a simple primary key, expected composite", table)
		}
		if got := aws.ToString(desc.KeySchema[1].AttributeName); got != rangeKey {
			return fmt.Errorf("table %s has sort key %s, expected %s", table, got, rangeKey)
		}
	}

	if desc.TableStatus != dynamodbtypes.TableStatusActive {
		return fmt.Errorf("table %s is not active (status: %s)", table, desc.TableStatus)
	}
	return nil
}

func (s *Store) QueryReservations(ctx context.Context, bookstore, date string) ([]reservations.Reservation, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.reservationsTable,
		KeyConditionExpression: aws.String(PartitionKey + " = :pk"),
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":pk": &dynamodbtypes.AttributeValueMemberS{Value: dayKey(bookstore, date)},
		},
		ConsistentRead: aws.Bool(s.opts.consistentRead),
	}

	var out []reservations.Reservation
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB table %s: %w", s.reservationsTable, err)
		}

		for _, item := range resp.Items {
			r, err := decodeReservation(item)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}

		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
	return out, nil
}

func (s *Store) PutReservation(ctx context.Context, r reservations.Reservation, mode reservations.PutMode) error {
	input := &dynamodb.PutItemInput{
		TableName: &s.reservationsTable,
		Item: map[string]dynamodbtypes.AttributeValue{
			PartitionKey:      &dynamodbtypes.AttributeValueMemberS{Value: dayKey(r.BookstoreName, r.Date)},
			SortKey:           &dynamodbtypes.AttributeValueMemberS{Value: r.Time},
			BookstoreNameAttr: &dynamodbtypes.AttributeValueMemberS{Value: r.BookstoreName},
			DateAttr:          &dynamodbtypes.AttributeValueMemberS{Value: r.Date},
			TimeAttr:          &dynamodbtypes.AttributeValueMemberS{Value: r.Time},
			CustomerAttr:      &dynamodbtypes.AttributeValueMemberS{Value: r.Customer},
			TimestampAttr:     &dynamodbtypes.AttributeValueMemberN{Value: strconv.FormatInt(r.Timestamp, 10)},
		},
	}
	if mode == reservations.PutIfAbsent {
		input.ConditionExpression = aws.String("attribute_not_exists(" + PartitionKey + ")")
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *dynamodbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return reservations.ErrConflict
		}
		return fmt.Errorf("failed to write reservation to DynamoDB table %s: %w", s.reservationsTable, err)
	}
	return nil
}

func (s *Store) FindBookstoreEmail(ctx context.Context, bookstore string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.bookstoresTable,
		Key: map[string]dynamodbtypes.AttributeValue{
			BookstoreNameAttr: &dynamodbtypes.AttributeValueMemberS{Value: bookstore},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get bookstore from DynamoDB table %s: %w", s.bookstoresTable, err)
	}

	if len(out.Item) == 0 {
		return "", false, nil
	}

	email := getStringValue(out.Item[EmailAttr])
	if email == "" {
		return "", false, nil
	}
	return email, true, nil
}

// dayKey prefixes the bookstore length so names containing '#' cannot
// collide with another (bookstore, date) pair.
func dayKey(bookstore, date string) string {
	return strconv.Itoa(len(bookstore)) + "#" + bookstore + "#" + date
}

func decodeReservation(item map[string]dynamodbtypes.AttributeValue) (reservations.Reservation, error) {
	r := reservations.Reservation{
		BookstoreName: getStringValue(item[BookstoreNameAttr]),
		Date:          getStringValue(item[DateAttr]),
		Time:          getStringValue(item[TimeAttr]),
		Customer:      getStringValue(item[CustomerAttr]),
	}
	if r.Time == "" {
		r.Time = getStringValue(item[SortKey])
	}

	if n, ok := item[TimestampAttr].(*dynamodbtypes.AttributeValueMemberN); ok {
		ts, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return r, fmt.Errorf("invalid %s %q: %w", TimestampAttr, n.Value, err)
		}
		r.Timestamp = ts
	}
	return r, nil
}

// getStringValue returns "" unless attr is a string attribute.
func getStringValue(attr dynamodbtypes.AttributeValue) string {
	if v, ok := attr.(*dynamodbtypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
