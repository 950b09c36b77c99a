package utils

import (
	"bytes"
	"html/template"

	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/money"
)

var emailFuncs = template.FuncMap{
	"price": money.Format,
	"lineTotal": func(it models.OrderItem) string {
		return money.Format(it.LineTotal())
	},
}

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Confirmación de pedido</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">¡Gracias por tu compra, {{.Order.FullName}}!</h2>
		<p>Recibimos tu pedido <strong>{{.Order.ID}}</strong>.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Producto</th>
					<th style="padding: 10px; text-align: left;">Cantidad</th>
					<th style="padding: 10px; text-align: left;">Precio</th>
					<th style="padding: 10px; text-align: left;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{range .Order.Items}}
				<tr>
					<td style="padding: 10px;">{{.Name}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{price .PriceCents}}</td>
					<td style="padding: 10px;">{{lineTotal .}}</td>
				</tr>
			{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{price .Order.TotalCents}}</td>
				</tr>
			</tfoot>
		</table>
		<p>Envío a: {{.Order.Address}}, {{.Order.City}} ({{.Order.PostalCode}})</p>
		{{if .Transfer}}
		<p>Para completar el pago por transferencia escaneá el código QR adjunto o usá estos datos:</p>
		<pre style="background-color: #f0f0f0; padding: 10px;">{{.Transfer}}</pre>
		{{end}}
		<p style="margin-top: 30px; color: #555;">Saludos,<br><strong>{{.Company}}</strong></p>
	</div>
</body>
</html>`))

var statusUpdateTmpl = template.Must(template.New("status").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Actualización de pedido</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 12px;">
		<h2 style="color: #333;">Tu pedido {{.Order.ID}}</h2>
		<p>Nuevo estado:
			<span style="display: inline-block; padding: 6px 14px; background-color: {{.Color}}; color: #fff; border-radius: 20px;">{{.Label}}</span>
		</p>
		<p>Total del pedido: {{price .Order.TotalCents}}</p>
		<p style="margin-top: 30px; color: #555;">Saludos,<br><strong>{{.Company}}</strong></p>
	</div>
</body>
</html>`))

func renderOrderConfirmation(order models.Order, company, transfer string) (string, error) {
	var buf bytes.Buffer
	err := orderConfirmationTmpl.Execute(&buf, map[string]any{
		"Order":    order,
		"Company":  company,
		"Transfer": transfer,
	})
	return buf.String(), err
}

func renderStatusUpdate(order models.Order, company, label, color string) (string, error) {
	var buf bytes.Buffer
	err := statusUpdateTmpl.Execute(&buf, map[string]any{
		"Order":   order,
		"Company": company,
		"Label":   label,
		"Color":   template.CSS(color),
	})
	return buf.String(), err
}
