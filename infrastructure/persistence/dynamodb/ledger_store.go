package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
	pkgerrors "simkernel/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// LedgerStore persists replay marker chains in DynamoDB. The
// compare-and-append contract is implemented with a conditional update
// on a per-session head item: the transaction commits only when the
// stored head hash still equals the prev_hash the caller observed, so
// the chain survives concurrent writers across processes.
type LedgerStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// headRecord tracks the current chain head for a session
type headRecord struct {
	PK       string `dynamodbav:"PK"` // LEDGER#<session_id>
	SK       string `dynamodbav:"SK"` // HEAD
	HeadHash string `dynamodbav:"HeadHash"`
	Seq      int64  `dynamodbav:"Seq"`
}

// markerRecord is how markers are stored
type markerRecord struct {
	PK        string  `dynamodbav:"PK"` // LEDGER#<session_id>
	SK        string  `dynamodbav:"SK"` // MARKER#<seq>#<marker_id>
	MarkerID  string  `dynamodbav:"MarkerID"`
	StateHash string  `dynamodbav:"StateHash"`
	PrevHash  *string `dynamodbav:"PrevHash,omitempty"`
	TMs       int64   `dynamodbav:"TMs"`
}

// NewLedgerStore creates a DynamoDB-backed ledger store
func NewLedgerStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *LedgerStore {
	return &LedgerStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Append adds a marker to the session's chain using a conditional
// transaction against the head item
func (s *LedgerStore) Append(ctx context.Context, sessionID valueobjects.SessionID, marker entities.ReplayMarker) error {
	pk := ledgerPK(sessionID)

	head, seq, err := s.readHead(ctx, pk)
	if err != nil {
		return err
	}
	nextSeq := seq + 1

	record := markerRecord{
		PK:        pk,
		SK:        fmt.Sprintf("MARKER#%012d#%s", nextSeq, marker.ID),
		MarkerID:  marker.ID,
		StateHash: marker.StateHash,
		PrevHash:  marker.PrevHash,
		TMs:       marker.TMs,
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal marker", err)
	}

	// The head condition is the CAS: a nil prev_hash is only valid when
	// no head item exists yet; otherwise the stored hash must equal the
	// prev_hash supplied by the caller.
	condition := "attribute_not_exists(PK)"
	values := map[string]types.AttributeValue{
		":hash": &types.AttributeValueMemberS{Value: marker.StateHash},
		":seq":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", nextSeq)},
	}
	if marker.PrevHash != nil {
		condition = "attribute_not_exists(PK) OR HeadHash = :prev"
		values[":prev"] = &types.AttributeValueMemberS{Value: *marker.PrevHash}
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(s.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: pk},
						"SK": &types.AttributeValueMemberS{Value: "HEAD"},
					},
					UpdateExpression:          aws.String("SET HeadHash = :hash, Seq = :seq"),
					ConditionExpression:       aws.String(condition),
					ExpressionAttributeValues: values,
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(s.tableName),
					Item:      item,
				},
			},
		},
	}

	if _, err := s.client.TransactWriteItems(ctx, input); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			s.logger.Debug("marker append rejected",
				zap.String("sessionID", sessionID.String()),
				zap.String("markerID", marker.ID),
			)
			details := map[string]interface{}{}
			if head != nil {
				details["head_hash"] = head.StateHash
			}
			return pkgerrors.NewConflictError("prev_hash does not match current chain head").
				WithCode(pkgerrors.CodeHashChainMismatch).
				WithDetails(details)
		}
		return pkgerrors.NewDatabaseError("append marker", err)
	}

	return nil
}

// Head returns the current chain head, or nil for an empty chain
func (s *LedgerStore) Head(ctx context.Context, sessionID valueobjects.SessionID) (*entities.ReplayMarker, error) {
	markers, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return nil, nil
	}
	head := markers[len(markers)-1]
	return &head, nil
}

// List returns the session's chain in append order, root first
func (s *LedgerStore) List(ctx context.Context, sessionID valueobjects.SessionID) ([]entities.ReplayMarker, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: ledgerPK(sessionID)},
			":prefix": &types.AttributeValueMemberS{Value: "MARKER#"},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var markers []entities.ReplayMarker
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query markers", err)
		}

		var records []markerRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal markers", err)
		}

		for _, record := range records {
			markers = append(markers, entities.ReplayMarker{
				ID:        record.MarkerID,
				StateHash: record.StateHash,
				PrevHash:  record.PrevHash,
				TMs:       record.TMs,
			})
		}
	}

	return markers, nil
}

func (s *LedgerStore) readHead(ctx context.Context, pk string) (*entities.ReplayMarker, int64, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: "HEAD"},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.NewDatabaseError("read chain head", err)
	}
	if result.Item == nil {
		return nil, 0, nil
	}

	var record headRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, 0, pkgerrors.NewDatabaseError("unmarshal chain head", err)
	}

	return &entities.ReplayMarker{StateHash: record.HeadHash}, record.Seq, nil
}

func ledgerPK(sessionID valueobjects.SessionID) string {
	return "LEDGER#" + sessionID.String()
}
