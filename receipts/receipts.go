package receipts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"tamias/db"
	"tamias/models"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

var receiptSecret = func() []byte {
	if s := os.Getenv("RECEIPT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("tamias-receipt-secret")
}()

// signPayload returns payload|signature so a reprinted receipt can be
// verified against tampering.
func signPayload(payload string) string {
	h := hmac.New(sha256.New, receiptSecret)
	h.Write([]byte(payload))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", payload, sig)
}

// PrintReceipt renders a completed transaction as a PDF receipt with a
// verification QR code in the footer.
func PrintReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	storeID := utils.GetStoreIDFromRequest(r)
	if storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	transactionID := ps.ByName("transactionid")

	var tx models.Transaction
	err := db.TransactionCollection.FindOne(ctx, bson.M{
		"transactionid": transactionID,
		"storeid":       storeID,
	}).Decode(&tx)
	if err != nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	var store models.Store
	if err := db.StoreCollection.FindOne(ctx, bson.M{"storeid": storeID}).Decode(&store); err != nil {
		log.Println("PrintReceipt store lookup:", err)
		store.Name = "Toko"
	}

	qrPayload := signPayload(fmt.Sprintf("%s|%s|%d", tx.StoreID, tx.TransactionID, tx.Total))
	qrPNG, err := qrcode.Encode(qrPayload, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := buildReceiptPDF(store, tx, qrPNG)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Println("PrintReceipt pdf output:", err)
		http.Error(w, "Failed to generate receipt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=receipt-%s.pdf", tx.TransactionID))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Println("PrintReceipt write:", err)
	}
}

func buildReceiptPDF(store models.Store, tx models.Transaction, qrPNG []byte) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, store.Name)
	pdf.Ln(7)
	if store.Address != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, store.Address)
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Receipt: %s", tx.TransactionID))
	pdf.Ln(5)
	pdf.Cell(0, 6, tx.CreatedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(9)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(90, 6, "Item")
	pdf.Cell(20, 6, "Qty")
	pdf.Cell(40, 6, "Price")
	pdf.Cell(40, 6, "Amount")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	for _, item := range tx.Items {
		pdf.Cell(90, 6, item.Name)
		pdf.Cell(20, 6, fmt.Sprintf("%d", item.Quantity))
		pdf.Cell(40, 6, utils.FormatRupiah(item.UnitPrice))
		pdf.Cell(40, 6, utils.FormatRupiah(item.UnitPrice*int64(item.Quantity)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	writeTotal := func(label string, amount int64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.Cell(110, 6, "")
		pdf.Cell(40, 6, label)
		pdf.Cell(40, 6, utils.FormatRupiah(amount))
		pdf.Ln(6)
	}
	writeTotal("Subtotal", tx.Subtotal, false)
	writeTotal("Tax (10%)", tx.Tax, false)
	writeTotal("Total", tx.Total, true)
	writeTotal("Paid ("+tx.PaymentMethod+")", tx.PaymentAmount, false)
	if tx.ChangeAmount > 0 {
		writeTotal("Change", tx.ChangeAmount, false)
	}

	pdf.Ln(6)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("receipt-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("receipt-qr", 85, pdf.GetY(), 40, 40, false, opts, 0, "")

	return pdf
}
