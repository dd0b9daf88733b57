package printing

import (
	"encoding/json"
	"fmt"
	"strings"
)

const slipWidth = 32

// Render turns a queued job payload into plain text for a thermal printer.
// Layouts are fixed width; anything the payload is missing prints blank.
func Render(kind string, payload json.RawMessage) (string, error) {
	data := map[string]interface{}{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return "", err
	}

	switch kind {
	case "visit_slip":
		return renderVisitSlip(data), nil
	case "prescription_sheet":
		return renderPrescriptionSheet(data), nil
	case "sale_receipt":
		return renderSaleReceipt(data), nil
	default:
		return "", fmt.Errorf("unknown print kind %q", kind)
	}
}

func renderVisitSlip(data map[string]interface{}) string {
	var b strings.Builder
	writeCentered(&b, "ANTRIAN KLINIK")
	writeDivider(&b)
	fmt.Fprintf(&b, "Tanggal : %s\n", str(data, "visit_date"))
	writeDivider(&b)
	writeCentered(&b, fmt.Sprintf("NO. %03d", number(data, "queue_number")))
	writeDivider(&b)
	writeCentered(&b, "Mohon menunggu panggilan")
	return b.String()
}

func renderPrescriptionSheet(data map[string]interface{}) string {
	var b strings.Builder
	writeCentered(&b, "RESEP DOKTER")
	writeDivider(&b)
	fmt.Fprintf(&b, "Diagnosis: %s\n", str(data, "diagnosis"))
	writeDivider(&b)
	if medicines, ok := data["medicines"].([]interface{}); ok {
		for _, raw := range medicines {
			line, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%-20s x%d\n", str(line, "medicine_name"), number(line, "quantity"))
			if dosage := str(line, "dosage"); dosage != "" {
				fmt.Fprintf(&b, "  %s\n", dosage)
			}
		}
	}
	return b.String()
}

func renderSaleReceipt(data map[string]interface{}) string {
	var b strings.Builder
	writeCentered(&b, "KWITANSI APOTEK")
	writeDivider(&b)
	fmt.Fprintf(&b, "Total   : %d\n", number(data, "total_amount"))
	fmt.Fprintf(&b, "Bayar   : %s\n", str(data, "payment_method"))
	writeDivider(&b)
	writeCentered(&b, "Terima kasih")
	return b.String()
}

func writeCentered(b *strings.Builder, text string) {
	pad := (slipWidth - len(text)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(text)
	b.WriteString("\n")
}

func writeDivider(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", slipWidth))
	b.WriteString("\n")
}

func str(data map[string]interface{}, key string) string {
	if value, ok := data[key]; ok {
		if text, ok := value.(string); ok {
			return text
		}
	}
	return ""
}

func number(data map[string]interface{}, key string) int {
	if value, ok := data[key]; ok {
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return 0
}
