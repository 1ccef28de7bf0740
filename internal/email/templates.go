package email

import (
	"fmt"
	"html"
	"time"
)

// LowStockAlert describes a product whose stock fell to the alert threshold
type LowStockAlert struct {
	ProductID  int64
	SKU        string
	Name       string
	StockLevel int
	Threshold  int
	DetectedAt time.Time
}

// BuildLowStockAlertBody builds the HTML body of a low stock alert
func BuildLowStockAlertBody(alert LowStockAlert) string {
	status := "Running low"
	color := "#f0ad4e"
	if alert.StockLevel == 0 {
		status = "Out of stock"
		color = "#d9534f"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: %s; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<table style="width: 100%%; border-collapse: collapse; margin: 0 0 20px 0;">
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Product</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; font-weight: bold;">%s</td>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">SKU</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; font-family: monospace;">%s</td>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Product ID</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%d</td>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Units left</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; font-size: 20px; font-weight: bold; color: %s;">%d</td>
			</tr>
			<tr>
				<td style="padding: 12px; color: #666;">Alert threshold</td>
				<td style="padding: 12px;">%d</td>
			</tr>
		</table>

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Detected at %s. This message was sent automatically by the catalog service.
		</p>
	</div>
</body>
</html>`,
		color, status,
		html.EscapeString(alert.Name),
		html.EscapeString(alert.SKU),
		alert.ProductID,
		color, alert.StockLevel,
		alert.Threshold,
		alert.DetectedAt.UTC().Format(time.RFC1123),
	)
}
