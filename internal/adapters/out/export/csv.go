// Package export writes payment exports of approved invoices as CSV, either to
// a filesystem or to an S3 bucket.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

const ContentType = "text/csv"

var header = []string{
	"invoice_id",
	"invoice_number",
	"version",
	"line_number",
	"line_item_id",
	"taxonomy_code",
	"billing_component",
	"quantity",
	"billed_amount",
	"payable_amount",
}

// Render encodes the export, one row per payable line. Amounts keep two decimals.
func Render(export ports.PaymentExport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, line := range export.Lines {
		row := []string{
			export.InvoiceID.String(),
			export.InvoiceNumber,
			strconv.Itoa(export.Version),
			strconv.Itoa(line.LineNumber),
			line.LineItemID.String(),
			line.TaxonomyCode,
			line.BillingComponent,
			line.Quantity.String(),
			line.BilledAmount.StringFixed(2),
			line.PayableAmount.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ObjectName is the relative path of an export: the supplier directory, then
// the invoice number, version and export date.
func ObjectName(export ports.PaymentExport) string {
	return fmt.Sprintf("%s/approved_%s_v%d_%s.csv",
		export.SupplierID.String(),
		safeName(export.InvoiceNumber),
		export.Version,
		export.ExportedAt.UTC().Format("20060102"))
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, s)
}
