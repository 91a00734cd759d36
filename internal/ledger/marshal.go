package ledger

import (
	"encoding/json"
	"fmt"
)

// The durable log stores the ledger as a JSON array of field-tagged objects.
// Each object carries a "type" discriminant so the sequence is self-describing
// and reloads into the correct concrete variant.

func (i *Issuance) MarshalJSON() ([]byte, error) {
	type alias Issuance
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{i.Kind(), (*alias)(i)})
}

func (s *Spending) MarshalJSON() ([]byte, error) {
	type alias Spending
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{s.Kind(), (*alias)(s)})
}

func (v *MilestoneVerification) MarshalJSON() ([]byte, error) {
	type alias MilestoneVerification
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{v.Kind(), (*alias)(v)})
}

func (r *Redemption) MarshalJSON() ([]byte, error) {
	type alias Redemption
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{r.Kind(), (*alias)(r)})
}

func (r *Return) MarshalJSON() ([]byte, error) {
	type alias Return
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{r.Kind(), (*alias)(r)})
}

// MarshalTransactions serializes the full ledger sequence to the durable log
// wire form: an indented JSON array preserving insertion order.
func MarshalTransactions(txs []Transaction) ([]byte, error) {
	if txs == nil {
		txs = []Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transactions: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalTransactions parses the durable log wire form back into concrete
// records, preserving order. An unknown "type" discriminant is an error: the
// variant set is closed.
func UnmarshalTransactions(data []byte) ([]Transaction, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}

	txs := make([]Transaction, 0, len(raw))
	for i, msg := range raw {
		tx, err := UnmarshalTransaction(msg)
		if err != nil {
			return nil, fmt.Errorf("unmarshal transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// UnmarshalTransaction parses one field-tagged record into its concrete
// variant, switching exhaustively on the discriminant.
func UnmarshalTransaction(msg []byte) (Transaction, error) {
	var env struct {
		Kind Kind `json:"type"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, err
	}

	var (
		tx  Transaction
		err error
	)
	switch env.Kind {
	case KindIssuance:
		var rec Issuance
		err = json.Unmarshal(msg, &rec)
		tx = &rec
	case KindSpending:
		var rec Spending
		err = json.Unmarshal(msg, &rec)
		tx = &rec
	case KindVerification:
		var rec MilestoneVerification
		err = json.Unmarshal(msg, &rec)
		tx = &rec
	case KindRedemption:
		var rec Redemption
		err = json.Unmarshal(msg, &rec)
		tx = &rec
	case KindReturn:
		var rec Return
		err = json.Unmarshal(msg, &rec)
		tx = &rec
	default:
		return nil, fmt.Errorf("unknown type %q", env.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Kind, err)
	}
	return tx, nil
}
