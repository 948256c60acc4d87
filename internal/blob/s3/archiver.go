package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// settlementRecord is the archived document: the settlement plus the rewards
// it produced, kept together so a single object tells the whole story of a
// market's resolution.
type settlementRecord struct {
	Settlement domain.Settlement        `json:"settlement"`
	Rewards    []domain.ClaimableReward `json:"rewards"`
}

// Archiver uploads one JSON document per resolved market. A market settles
// at most once, so keys never collide and uploads are safe to retry.
type Archiver struct {
	client *Client
}

// NewArchiver creates an Archiver writing through the given client.
func NewArchiver(client *Client) *Archiver {
	return &Archiver{client: client}
}

// ArchiveSettlement serializes the settlement and its rewards and uploads
// the document to settlements/<marketID>.json.
func (a *Archiver) ArchiveSettlement(ctx context.Context, st domain.Settlement, rewards []domain.ClaimableReward) error {
	doc, err := json.Marshal(settlementRecord{Settlement: st, Rewards: rewards})
	if err != nil {
		return fmt.Errorf("s3blob: marshal settlement %s: %w", st.MarketID, err)
	}

	key := settlementKey(st.MarketID)
	_, err = a.client.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: upload settlement %s: %w", st.MarketID, err)
	}
	return nil
}

// settlementKey builds the object key for a market's settlement document.
//
//	settlements/sonic-price-1usd.json
func settlementKey(marketID string) string {
	return fmt.Sprintf("settlements/%s.json", marketID)
}

// Compile-time interface check.
var _ domain.SettlementArchiver = (*Archiver)(nil)
