package finpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payment-collection/internal/status"
	"payment-collection/models"
	"payment-collection/monitoring"
)

const (
	GrantTypeDefaultStr = "client_credentials"

	// statusOK is the gateway's "approved" envelope status.
	statusOK = "00"
)

// notifyAccessTokenExpired do infinite loop with period of time
// to perform auto renew token from the gateway backend with
// exponential backOff strategy.
func (f *finpay) notifyAccessTokenExpired(ctx context.Context) {
	ticker := time.NewTicker(3 * time.Minute)
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return

		case <-ticker.C:

		case <-f.toggleTokenRefresher:
			log.Println("notifyAccessTokenExpired: toggleTokenRefresher => token refreshed")
		}

		// reconnect with exponential backOff strategy
		backOff := time.Second

	Retry:
		for {
			token, err := f.connect(ctx)
			switch err {
			case nil:
				f.setAccessToken(token)

				break Retry

			default:
				log.Printf("notifyAccessTokenExpired: %v", err)

				select {
				case <-ctx.Done():
					return

				case <-time.After(backOff):
					backOff *= 2
				}
			}
		}
	}
}

// setAccessToken set access token to client.
func (f *finpay) setAccessToken(accessToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessToken = accessToken
}

// getAccessToken get access token from client.
func (f *finpay) getAccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accessToken
}

// connect makes http call to perform authentication with the gateway backend.
func (f *finpay) connect(ctx context.Context) (string, error) {
	query := url.Values{"grant_type": []string{GrantTypeDefaultStr}}
	body := strings.NewReader(query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.accessTokenBaseURL, body)
	if err != nil {
		return "", fmt.Errorf("connectFinpay: http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.URL.User = url.UserPassword(f.clientID, f.clientSecret)

	resp, err := f.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("connectFinpay: http.DefaultClient.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("connectFinpay: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	var reply struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return "", fmt.Errorf("connectFinpay: json.Decode: %w", err)
	}

	return fmt.Sprintf("%s %s", reply.TokenType, reply.AccessToken), nil
}

// do runs a gateway call through the circuit breaker and records its duration.
func (f *finpay) do(req *http.Request, call string) (*http.Response, error) {
	start := time.Now()
	res, err := f.cb.Execute(req.Context(), func() (interface{}, error) {
		return f.hc.Do(req)
	})
	monitoring.TrackGatewayCall(call, time.Since(start))
	if err != nil {
		return nil, err
	}

	return res.(*http.Response), nil
}

type (
	// initiateReq is the wire form of a collection initiation.
	initiateReq struct {
		ServiceType         string          `json:"serviceType"`
		Amount              decimal.Decimal `json:"txnAmount"`
		MobileNumber        string          `json:"mobileNum,omitempty"`
		InstrumentType      string          `json:"instrumentType,omitempty"`
		InstrumentReference string          `json:"instrumentRef,omitempty"`
		Memo                string          `json:"metadata,omitempty"`
		CaseID              string          `json:"caseId,omitempty"`
		LoanAccountNumber   string          `json:"loanAccountNum,omitempty"`
		CustomerName        string          `json:"customerName,omitempty"`
		CustomerEmail       string          `json:"customerEmail,omitempty"`
		ReferenceNumber     string          `json:"refNo"`

		// reqTxUUID is the request transaction UUID, sent in headers only.
		reqTxUUID string
	}

	// paymentData is the wire form of a transaction in gateway replies.
	paymentData struct {
		ServiceType   string          `json:"serviceType"`
		TransactionID string          `json:"txnId"`
		Amount        decimal.Decimal `json:"txnAmount"`
		Status        string          `json:"txnStatus"`
		Message       string          `json:"statusDesc"`
		PaymentLink   string          `json:"paymentLink"`
		QRCodeBase64  string          `json:"qrImage"`
		QRCodeURL     string          `json:"qrCodeUrl"`
		ExpiresAt     string          `json:"expiryAt"`
		CreatedAt     string          `json:"txnDateTime"`
	}

	// receiptData is the wire form of a repayment receipt.
	receiptData struct {
		ReceiptID         string          `json:"receiptId"`
		RepaymentNumber   string          `json:"repaymentNo"`
		Amount            decimal.Decimal `json:"txnAmount"`
		PaymentMode       string          `json:"paymentMode"`
		PaymentDate       string          `json:"paymentDate"`
		CustomerName      string          `json:"customerName"`
		LoanAccountNumber string          `json:"loanAccountNum"`
		CaseNumber        string          `json:"caseNum"`
		Status            string          `json:"status"`
	}
)

func (p *paymentData) toDomain() *models.PaymentResponse {
	resp := &models.PaymentResponse{
		ServiceType:   models.ServiceType(p.ServiceType),
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Status:        models.PaymentStatus(p.Status),
		Message:       p.Message,
		PaymentLink:   p.PaymentLink,
		QRCodeBase64:  p.QRCodeBase64,
		QRCodeURL:     p.QRCodeURL,
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04:05", p.ExpiresAt, time.Local); err == nil {
		resp.ExpiresAt = &t
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", p.CreatedAt, time.Local); err == nil {
		resp.CreatedAt = &t
	}

	return resp
}

func (r *receiptData) toDomain() *models.ReceiptDetails {
	if r == nil {
		return nil
	}

	details := &models.ReceiptDetails{
		ID:                r.ReceiptID,
		RepaymentNumber:   r.RepaymentNumber,
		Amount:            r.Amount,
		PaymentMode:       r.PaymentMode,
		CustomerName:      r.CustomerName,
		LoanAccountNumber: r.LoanAccountNumber,
		CaseNumber:        r.CaseNumber,
		Status:            r.Status,
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04:05", r.PaymentDate, time.Local); err == nil {
		details.PaymentDate = &t
	}

	return details
}

// initiatePayment starts a collection attempt on the gateway.
func (f *finpay) initiatePayment(ctx context.Context, q *initiateReq) (*paymentData, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("initiatePayment: json.Marshal: %w", err)
	}
	body := bytes.NewBuffer(b)

	_baseURL, _ := url.Parse(f.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", _baseURL, "/collections/api/v1/payments/initiate.service"), body)
	if err != nil {
		return nil, fmt.Errorf("initiatePayment: http.NewRequestWithContext: %w", err)
	}
	req = f.setHeaders(req, q.reqTxUUID)

	resp, err := f.do(req, "initiate")
	if err != nil {
		return nil, fmt.Errorf("initiatePayment: do: %w", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		f.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("initiatePayment: resp.StatusCode: 401 => Unauthorized")
	}

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("initiatePayment: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    *paymentData `json:"dataResponse"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("initiatePayment: json.Decode: %w", err)
	}
	if reply.Status != statusOK || reply.Data == nil {
		return nil, fmt.Errorf("initiatePayment: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return reply.Data, nil
}

// queryStatus checks transaction status on the gateway.
func (f *finpay) queryStatus(ctx context.Context, serviceType, transactionID string) (*paymentData, error) {
	queryParams := url.Values{}
	queryParams.Set("serviceType", serviceType)

	_baseURL, _ := url.Parse(f.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/collections/api/v1/payments/%s/inquiry.service?%s", _baseURL, transactionID, queryParams.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("queryStatus: http.NewRequestWithContext: %w", err)
	}
	req = f.setHeaders(req, "")

	resp, err := f.do(req, "inquiry")
	if err != nil {
		return nil, fmt.Errorf("queryStatus: do: %w", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		f.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("queryStatus: resp.StatusCode: 401 => Unauthorized")
	}

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("queryStatus: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    *paymentData `json:"dataResponse"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("queryStatus: json.Decode: %w", err)
	}

	if reply.Status != statusOK || reply.Data == nil {
		if reply.Message == "INQUIRY_TXN_EMPTY" {
			return nil, status.ErrPaymentNotFound
		}

		return nil, fmt.Errorf("queryStatus: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return reply.Data, nil
}

// cancelPayment cancels a transaction on the gateway. The reply may carry the
// confirmed terminal transaction, or no data at all for a plain acknowledgment.
func (f *finpay) cancelPayment(ctx context.Context, serviceType, transactionID, reason string) (*paymentData, error) {
	b, err := json.Marshal(map[string]string{
		"serviceType":  serviceType,
		"cancelReason": reason,
	})
	if err != nil {
		return nil, fmt.Errorf("cancelPayment: json.Marshal: %w", err)
	}
	body := bytes.NewBuffer(b)

	_baseURL, _ := url.Parse(f.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/collections/api/v1/payments/%s/cancel.service", _baseURL, transactionID), body)
	if err != nil {
		return nil, fmt.Errorf("cancelPayment: http.NewRequestWithContext: %w", err)
	}
	req = f.setHeaders(req, "")

	resp, err := f.do(req, "cancel")
	if err != nil {
		return nil, fmt.Errorf("cancelPayment: do: %w", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		f.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("cancelPayment: resp.StatusCode: 401 => Unauthorized")
	}

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cancelPayment: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    *paymentData `json:"dataResponse"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("cancelPayment: json.Decode: %w", err)
	}
	if reply.Status != statusOK {
		return nil, fmt.Errorf("cancelPayment: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return reply.Data, nil
}

// generateReceipt asks the gateway to create (or re-surface) the receipt of a
// successful transaction. The gateway treats repeated calls for the same
// transaction as the same receipt.
func (f *finpay) generateReceipt(ctx context.Context, transactionID string) (*receiptData, error) {
	b, err := json.Marshal(map[string]string{"txnId": transactionID})
	if err != nil {
		return nil, fmt.Errorf("generateReceipt: json.Marshal: %w", err)
	}
	body := bytes.NewBuffer(b)

	_baseURL, _ := url.Parse(f.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", _baseURL, "/collections/api/v1/receipts/generate.service"), body)
	if err != nil {
		return nil, fmt.Errorf("generateReceipt: http.NewRequestWithContext: %w", err)
	}
	req = f.setHeaders(req, "")

	resp, err := f.do(req, "receipt_generate")
	if err != nil {
		return nil, fmt.Errorf("generateReceipt: do: %w", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		f.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("generateReceipt: resp.StatusCode: 401 => Unauthorized")
	}

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generateReceipt: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    *receiptData `json:"dataResponse"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("generateReceipt: json.Decode: %w", err)
	}
	if reply.Status != statusOK {
		// RECEIPT_ALREADY_EXISTS carries the existing receipt in the same
		// envelope; treat it as success.
		if reply.Message == "RECEIPT_ALREADY_EXISTS" && reply.Data != nil {
			return reply.Data, nil
		}

		return nil, fmt.Errorf("generateReceipt: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return reply.Data, nil
}

// fetchReceipt loads receipt details by receipt id.
func (f *finpay) fetchReceipt(ctx context.Context, receiptID string) (*receiptData, error) {
	_baseURL, _ := url.Parse(f.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/collections/api/v1/receipts/%s", _baseURL, receiptID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetchReceipt: http.NewRequestWithContext: %w", err)
	}
	req = f.setHeaders(req, "")

	resp, err := f.do(req, "receipt_fetch")
	if err != nil {
		return nil, fmt.Errorf("fetchReceipt: do: %w", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		f.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("fetchReceipt: resp.StatusCode: 401 => Unauthorized")
	}

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetchReceipt: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    *receiptData `json:"dataResponse"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("fetchReceipt: json.Decode: %w", err)
	}
	if reply.Status != statusOK || reply.Data == nil {
		return nil, fmt.Errorf("fetchReceipt: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return reply.Data, nil
}

// downloadBlob fetches the receipt document bytes from the given path.
func (f *finpay) downloadBlob(ctx context.Context, path string) ([]byte, error) {
	_baseURL, _ := url.Parse(f.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", _baseURL, path), nil)
	if err != nil {
		return nil, fmt.Errorf("downloadBlob: http.NewRequestWithContext: %w", err)
	}
	req = f.setHeaders(req, "")
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.do(req, "receipt_blob")
	if err != nil {
		return nil, fmt.Errorf("downloadBlob: do: %w", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		f.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("downloadBlob: resp.StatusCode: 401 => Unauthorized")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, status.ErrPaymentNotFound
	}

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("downloadBlob: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("downloadBlob: io.ReadAll: %w", err)
	}

	return blob, nil
}
