package receipt

import (
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("02/01/2006") },
	"clock": func(t time.Time) string { return t.Format("15:04") },
	"title": func(k Kind) string {
		switch k {
		case KindRental:
			return "BON DE LOCATION"
		case KindPayment:
			return "RECU DE PAIEMENT"
		}
		return "BON DE VENTE"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
@page { size: 80mm auto; margin: 4mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 9pt; width: 72mm; margin: 0; }
.center { text-align: center; }
.shop { font-size: 16pt; font-weight: bold; }
.title { font-size: 12pt; font-weight: bold; margin: 6px 0; }
.rule { border-top: 1px dashed #000; margin: 6px 0; }
.row { display: flex; justify-content: space-between; }
.bold { font-weight: bold; }
.small { font-size: 8pt; }
</style>
</head>
<body>
<div class="center shop">{{.Shop.Name}}</div>
{{if .Shop.Address}}<div class="center">{{.Shop.Address}}</div>{{end}}
{{if .Shop.Phone}}<div class="center">Tel: {{.Shop.Phone}}</div>{{end}}
<div class="rule"></div>
<div class="center title">{{title .Receipt.Kind}}</div>
<div>No: {{.Receipt.Number}}</div>
<div>Date: {{date .CreatedAt}}</div>
<div>Heure: {{clock .CreatedAt}}</div>
<div class="rule"></div>
<div class="bold">CLIENT:</div>
<div>{{.Receipt.ClientName}}</div>
{{if .Receipt.ClientPhone}}<div>Tel: {{.Receipt.ClientPhone}}</div>{{end}}
{{with .Receipt.Rental}}
<div class="rule"></div>
<div class="bold">LOCATION:</div>
<div>Debut: {{date .Start}}</div>
<div>Fin: {{date .End}}</div>
<div>Duree: {{.Days}} jour{{if gt .Days 1}}s{{end}}</div>
<div>Retour: {{date .Return}}</div>
{{end}}
<div class="rule"></div>
<div class="bold">ARTICLES:</div>
{{range .Receipt.Items}}
<div class="small">{{.Name}}</div>
<div class="row small"><span>{{.Quantity}} x {{money .UnitPrice}} {{$.Shop.Currency}}</span><span>{{money .Total}} {{$.Shop.Currency}}</span></div>
{{end}}
<div class="rule"></div>
{{if .Receipt.Discount.IsPositive}}<div class="row"><span>Remise:</span><span>-{{money .Receipt.Discount}} {{.Shop.Currency}}</span></div>{{end}}
<div class="row bold"><span>TOTAL:</span><span>{{money .Receipt.Total}} {{.Shop.Currency}}</span></div>
{{with .Receipt.Rental}}<div class="row"><span>Caution:</span><span>{{money .Deposit}} {{$.Shop.Currency}}</span></div>{{end}}
<div class="row bold"><span>PAYE:</span><span>{{money .Receipt.Paid}} {{.Shop.Currency}}</span></div>
{{if .Receipt.Method}}<div class="row"><span>Mode:</span><span>{{.Receipt.Method}}</span></div>{{end}}
{{if .Receipt.SettledInFull}}<div class="center bold">*** PAYE INTEGRALEMENT ***</div>
{{else}}<div class="row bold"><span>RESTE:</span><span>{{money .Receipt.Remaining}} {{.Shop.Currency}}</span></div>{{end}}
{{if .Receipt.Rental}}
<div class="rule"></div>
<div class="bold small">CONDITIONS:</div>
<div class="small">- Retour dans l'etat initial</div>
<div class="small">- Retard facture au tarif/jour</div>
<div class="small">- Caution restituee apres controle</div>
{{end}}
<div class="rule"></div>
<div class="small">Vendeur: {{.Receipt.CreatedBy}}</div>
<div class="center bold">MERCI DE VOTRE VISITE !</div>
<div class="small">Signature client:</div>
<div>_________________________</div>
</body>
</html>
`))

type receiptPage struct {
	Shop      Shop
	Receipt   Receipt
	CreatedAt time.Time
}

// RenderHTML writes r as an 80 mm thermal receipt. Dates are shown in loc.
func RenderHTML(w io.Writer, shop Shop, r Receipt, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	if r.Rental != nil {
		terms := *r.Rental
		terms.Start = terms.Start.In(loc)
		terms.End = terms.End.In(loc)
		terms.Return = terms.Return.In(loc)
		r.Rental = &terms
	}
	return receiptTemplate.Execute(w, receiptPage{Shop: shop, Receipt: r, CreatedAt: r.CreatedAt.In(loc)})
}
