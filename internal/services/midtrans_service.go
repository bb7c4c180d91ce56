package services

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// PaymentGateway creates hosted checkout transactions and authenticates
// their notifications
type PaymentGateway interface {
	CreateTransaction(req *snap.Request) (*snap.Response, error)
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
	ClientKey() string
}

type MidtransService struct {
	snapClient snap.Client
	serverKey  string
	clientKey  string
}

func NewMidtransService(serverKey, clientKey string, production bool) *MidtransService {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	return &MidtransService{
		snapClient: s,
		serverKey:  serverKey,
		clientKey:  clientKey,
	}
}

// CreateTransaction creates a Snap transaction and returns the redirect URL and token
func (s *MidtransService) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	resp, err := s.snapClient.CreateTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans create transaction error: %v", err)
	}
	return resp, nil
}

// VerifySignature checks SHA512(order_id + status_code + gross_amount + server_key)
func (s *MidtransService) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	return subtle.ConstantTimeCompare([]byte(MidtransSignature(orderID, statusCode, grossAmount, s.serverKey)), []byte(signatureKey)) == 1
}

func (s *MidtransService) ClientKey() string {
	return s.clientKey
}

// MidtransSignature computes the notification signature key
func MidtransSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
