package receipt

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

// Contract is the A4 rental agreement signed by the shop and the client.
type Contract struct {
	RentalID  uuid.UUID
	Client    models.Client
	Product   models.Product
	Quantity  int
	Start     time.Time
	End       time.Time
	Days      int
	DailyRate decimal.Decimal
	Total     decimal.Decimal
	Deposit   decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	CreatedBy string
	CreatedAt time.Time
}

func NewContract(r models.Rental, days int, client models.Client, product models.Product) Contract {
	return Contract{
		RentalID:  r.ID,
		Client:    client,
		Product:   product,
		Quantity:  r.Quantity,
		Start:     r.StartDate,
		End:       r.EndDate,
		Days:      days,
		DailyRate: r.DailyRate,
		Total:     r.TotalAmount,
		Deposit:   r.Deposit,
		Paid:      r.PaidAmount,
		Remaining: r.RemainingAmount,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

func (c Contract) Number() string {
	return strings.ToUpper(c.RentalID.String()[:8])
}

// Filename is the suggested download name, e.g.
// contrat-location-3fa85f64-benali.pdf.
func (c Contract) Filename() string {
	name := strings.Join(strings.Fields(strings.ToLower(c.Client.LastName)), "-")
	if name == "" {
		return fmt.Sprintf("contrat-location-%s.pdf", strings.ToLower(c.Number()))
	}
	return fmt.Sprintf("contrat-location-%s-%s.pdf", strings.ToLower(c.Number()), name)
}

var contractTemplate = template.Must(template.New("contract").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("02/01/2006") },
	"days":  dayCount,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
@page { size: A4; margin: 15mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; margin: 0; }
h1 { text-align: center; font-size: 18pt; margin: 0 0 4px 0; }
h2 { font-size: 11pt; border-bottom: 1px solid #000; padding-bottom: 2px; margin: 14px 0 6px 0; }
.center { text-align: center; }
.cols { display: flex; gap: 24px; }
.cols > div { flex: 1; }
table { width: 100%; border-collapse: collapse; }
td { padding: 2px 0; }
td.value { text-align: right; }
.bold { font-weight: bold; }
.sign { height: 60px; border-bottom: 1px solid #000; }
</style>
</head>
<body>
<h1>CONTRAT DE LOCATION</h1>
<div class="center">{{.Shop.Name}}{{if .Shop.Address}} - {{.Shop.Address}}{{end}}{{if .Shop.Phone}} - Tel: {{.Shop.Phone}}{{end}}</div>

<h2>INFORMATIONS DU CONTRAT</h2>
<table>
<tr><td>Contrat No:</td><td class="value">{{.Contract.Number}}</td></tr>
<tr><td>Date:</td><td class="value">{{date .CreatedAt}}</td></tr>
<tr><td>Etabli par:</td><td class="value">{{.Contract.CreatedBy}}</td></tr>
</table>

<h2>PARTIES CONTRACTANTES</h2>
<div class="cols">
<div>
<div class="bold">LE BAILLEUR</div>
<div>{{.Shop.Name}}</div>
{{if .Shop.Address}}<div>{{.Shop.Address}}</div>{{end}}
{{if .Shop.Phone}}<div>Tel: {{.Shop.Phone}}</div>{{end}}
</div>
<div>
<div class="bold">LE LOCATAIRE</div>
<div>{{.Contract.Client.FullName}}</div>
{{if .Contract.Client.Phone}}<div>Tel: {{.Contract.Client.Phone}}</div>{{end}}
{{if .Contract.Client.Email}}<div>Email: {{.Contract.Client.Email}}</div>{{end}}
{{if .Contract.Client.Address}}<div>Adresse: {{.Contract.Client.Address}}</div>{{end}}
</div>
</div>

<h2>ARTICLE LOUE</h2>
<table>
<tr><td>Article:</td><td class="value">{{.Contract.Product.Name}}</td></tr>
{{with .Contract.Product.Category}}<tr><td>Categorie:</td><td class="value">{{.}}</td></tr>{{end}}
{{with .Contract.Product.Size}}<tr><td>Taille:</td><td class="value">{{.}}</td></tr>{{end}}
{{with .Contract.Product.Color}}<tr><td>Couleur:</td><td class="value">{{.}}</td></tr>{{end}}
{{with .Contract.Product.Barcode}}<tr><td>Code-barres:</td><td class="value">{{.}}</td></tr>{{end}}
<tr><td>Quantite:</td><td class="value">{{.Contract.Quantity}}</td></tr>
</table>

<h2>CONDITIONS DE LOCATION</h2>
<table>
<tr><td>Date de debut:</td><td class="value">{{date .Start}}</td></tr>
<tr><td>Date de fin:</td><td class="value">{{date .End}}</td></tr>
<tr><td>Duree:</td><td class="value">{{days .Contract.Days}}</td></tr>
<tr><td>Tarif journalier:</td><td class="value">{{money .Contract.DailyRate}} {{.Shop.Currency}}</td></tr>
<tr class="bold"><td>Montant total:</td><td class="value">{{money .Contract.Total}} {{.Shop.Currency}}</td></tr>
<tr><td>Caution:</td><td class="value">{{money .Contract.Deposit}} {{.Shop.Currency}}</td></tr>
<tr><td>Montant paye:</td><td class="value">{{money .Contract.Paid}} {{.Shop.Currency}}</td></tr>
{{if .Contract.Remaining.IsPositive}}<tr class="bold"><td>Solde restant:</td><td class="value">{{money .Contract.Remaining}} {{.Shop.Currency}}</td></tr>{{end}}
</table>

<h2>CONDITIONS GENERALES</h2>
<ol>
<li>Le locataire s'engage a restituer l'article dans l'etat ou il l'a recu.</li>
<li>Tout retard de restitution sera facture au tarif journalier.</li>
<li>La caution est restituee apres controle de l'article.</li>
<li>Toute deterioration ou perte est a la charge du locataire.</li>
<li>L'article ne peut etre sous-loue ni prete a un tiers.</li>
<li>Le solde restant est du au plus tard a la restitution de l'article.</li>
<li>La signature du present contrat vaut acceptation de ces conditions.</li>
</ol>

<h2>SIGNATURES</h2>
<div class="cols">
<div><div>Le bailleur</div><div class="sign"></div></div>
<div><div>Le locataire (lu et approuve)</div><div class="sign"></div></div>
</div>
</body>
</html>
`))

type contractPage struct {
	Shop      Shop
	Contract  Contract
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// RenderContractHTML writes c as an A4 page. Dates are shown in loc.
func RenderContractHTML(w io.Writer, shop Shop, c Contract, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	return contractTemplate.Execute(w, contractPage{
		Shop:      shop,
		Contract:  c,
		Start:     c.Start.In(loc),
		End:       c.End.In(loc),
		CreatedAt: c.CreatedAt.In(loc),
	})
}
