// Package receipt renders a completed order as a printable A4 PDF.
//
// Rendering is cosmetic: it reads the immutable order snapshot and never
// changes it, so a failed render leaves the confirmed order untouched.
package receipt

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/domain"
)

// ErrRender wraps every rendering failure, including recovered panics.
var ErrRender = errors.New("receipt: render failed")

// Row is one line of the item table.
type Row struct {
	Name      string
	Sizes     string
	Color     string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Rows projects the snapshot items into table rows.
func Rows(o *domain.CompletedOrder) []Row {
	rows := make([]Row, len(o.Items))
	for i, it := range o.Items {
		color := "-"
		if it.Color != nil && it.Color.Name != "" {
			color = it.Color.Name
		}
		rows[i] = Row{
			Name:      it.ProductName,
			Sizes:     FormatSizes(it.SizeLabels, it.Sizes),
			Color:     color,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.LineTotal,
		}
	}
	return rows
}

// FormatSizes flattens selections to "Shirt Size: M, Pants Size: 30". Labels
// come in product order; anything not in labels follows alphabetically.
func FormatSizes(labels []string, sizes map[string]string) string {
	seen := make(map[string]bool, len(labels))
	var parts []string
	add := func(label string) {
		if v := strings.TrimSpace(sizes[label]); v != "" && !seen[label] {
			parts = append(parts, label+": "+v)
		}
		seen[label] = true
	}
	for _, l := range labels {
		add(l)
	}
	rest := make([]string, 0, len(sizes))
	for l := range sizes {
		if !seen[l] {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	for _, l := range rest {
		add(l)
	}
	return strings.Join(parts, ", ")
}

var amounts = message.NewPrinter(language.English)

// FormatMoney renders whole taka with grouping, e.g. "BDT 1,300".
func FormatMoney(d decimal.Decimal) string {
	return amounts.Sprintf("BDT %d", d.Round(0).IntPart())
}

// Filename is the download name of a receipt.
func Filename(orderID int64) string {
	return "GenZZone_Order_" + strconv.FormatInt(orderID, 10) + ".pdf"
}

// Config holds the branding printed on receipts. Location sets the time
// zone of the order date (Asia/Dhaka offset by default).
type Config struct {
	Brand    string
	Website  string
	Location *time.Location
}

// Generator renders receipts. It holds no per-order state.
type Generator struct {
	cfg      Config
	compress bool
}

func NewGenerator(cfg Config) *Generator {
	if cfg.Brand == "" {
		cfg.Brand = "GenZ Zone"
	}
	if cfg.Website == "" {
		cfg.Website = "www.genzzone.com"
	}
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("BDT", 6*60*60)
	}
	return &Generator{cfg: cfg, compress: true}
}

// page geometry, millimetres
const (
	margin     = 20.0
	pageBreakY = 260.0
	rowHeight  = 7.0
	nameWidth  = 45.0
	sizeWidth  = 19.0
	colorWidth = 25.0
	totalsX    = 115.0
	totalsValX = 160.0
)

var columns = []struct {
	title string
	x     float64
}{
	{"Item", 22}, {"Size", 70}, {"Color", 90}, {"Qty", 120}, {"Price", 138}, {"Total", 165},
}

// Render writes the receipt to w and reports how many pages it has.
func (g *Generator) Render(w io.Writer, o *domain.CompletedOrder) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("%w: %v", ErrRender, r)
		}
	}()
	if o == nil {
		return 0, fmt.Errorf("%w: no order", ErrRender)
	}

	r := newRenderer(g)
	r.header(o)
	r.customer(o)
	r.items(Rows(o))
	r.totals(o)
	r.footer()

	if r.pdf.Err() {
		return 0, fmt.Errorf("%w: %w", ErrRender, r.pdf.Error())
	}
	pages = r.pdf.PageNo()
	if err := r.pdf.Output(w); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return pages, nil
}

type renderer struct {
	cfg   Config
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
	y     float64
}

func newRenderer(g *Generator) *renderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Order Confirmation Receipt", true)
	pdf.AddPage()
	w, _ := pdf.GetPageSize()
	return &renderer{
		cfg:   g.cfg,
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: w,
		y:     20,
	}
}

func (r *renderer) text(x float64, s string) { r.pdf.Text(x, r.y, r.tr(s)) }

func (r *renderer) centered(s string, size float64) {
	r.pdf.SetFontSize(size)
	s = r.tr(s)
	r.pdf.Text((r.width-r.pdf.GetStringWidth(s))/2, r.y, s)
}

func (r *renderer) rule() {
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.Line(margin, r.y, r.width-margin, r.y)
}

func (r *renderer) section(title string) {
	r.pdf.SetFont("Helvetica", "B", 14)
	r.text(margin, title)
	r.y += 8
	r.pdf.SetFont("Helvetica", "", 11)
}

func (r *renderer) pair(label, value string) {
	r.pdf.SetFont("Helvetica", "B", 11)
	r.text(margin, label)
	r.pdf.SetFont("Helvetica", "", 11)
	if value != "" {
		r.text(70, value)
	}
	r.y += 7
}

func (r *renderer) header(o *domain.CompletedOrder) {
	r.pdf.SetFont("Helvetica", "B", 24)
	r.centered(r.cfg.Brand, 24)
	r.y += 8
	r.pdf.SetFont("Helvetica", "", 12)
	r.centered("Order Confirmation Receipt", 12)
	r.y += 15
	r.rule()
	r.y += 10

	r.section("Order Information")
	r.pair("Order ID:", "#"+strconv.FormatInt(o.ID, 10))
	r.pair("Order Date:", o.CreatedAt.In(r.cfg.Location).Format("January 2, 2006, 03:04 PM"))
	r.pair("Payment Method:", o.PaymentMethod)
	r.y += 5
	r.rule()
	r.y += 10
}

func (r *renderer) customer(o *domain.CompletedOrder) {
	r.section("Customer Information")
	r.pair("Name:", o.Customer.Name)
	r.pair("Phone:", o.Customer.Phone)
	r.pair("District:", o.Customer.District.WireName())
	r.pair("Address:", "")

	lines := r.pdf.SplitText(r.tr(o.Customer.Address), r.width-90)
	y := r.y - 7
	for _, l := range lines {
		r.pdf.Text(70, y, l)
		y += 5
	}
	if len(lines) > 1 {
		r.y += float64(len(lines)-1) * 5
	}
	r.y += 5
	r.rule()
	r.y += 10
}

func (r *renderer) items(rows []Row) {
	r.pdf.SetFont("Helvetica", "B", 14)
	r.text(margin, "Order Items")
	r.y += 10
	r.tableHeader()

	r.pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		r.text(22, r.fit(row.Name, nameWidth))
		r.text(70, r.fit(row.Sizes, sizeWidth))
		r.text(90, r.fit(row.Color, colorWidth))
		r.text(120, strconv.Itoa(row.Quantity))
		r.text(138, FormatMoney(row.UnitPrice))
		r.text(165, FormatMoney(row.Total))
		r.y += rowHeight

		if r.y > pageBreakY {
			r.pdf.AddPage()
			r.y = 20
		}
	}
	r.y += 5
	r.rule()
	r.y += 10
}

func (r *renderer) tableHeader() {
	r.pdf.SetFillColor(240, 240, 240)
	r.pdf.Rect(margin, r.y-5, r.width-2*margin, 8, "F")
	r.pdf.SetFont("Helvetica", "B", 9)
	for _, c := range columns {
		r.text(c.x, c.title)
	}
	r.y += 8
}

// fit truncates s with "..." so it renders within limit millimetres in the
// current font.
func (r *renderer) fit(s string, limit float64) string {
	if r.pdf.GetStringWidth(r.tr(s)) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && r.pdf.GetStringWidth(r.tr(string(runes)+"...")) > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func (r *renderer) totals(o *domain.CompletedOrder) {
	// keep totals and footer together
	if r.y+60 > 297 {
		r.pdf.AddPage()
		r.y = 20
	}
	r.pdf.SetFont("Helvetica", "", 11)
	r.text(totalsX, "Subtotal:")
	r.text(totalsValX, FormatMoney(o.ProductTotal))
	r.y += 7
	r.text(totalsX, "Delivery Charge:")
	r.text(totalsValX, FormatMoney(o.DeliveryCharge))
	r.y += 7
	r.rule()
	r.y += 7
	r.pdf.SetFont("Helvetica", "B", 13)
	r.text(totalsX, "Total Amount:")
	r.text(totalsValX, FormatMoney(o.GrandTotal))
	r.y += 15
}

func (r *renderer) footer() {
	r.rule()
	r.y += 10
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetTextColor(100, 100, 100)
	r.centered("Thank you for shopping with "+r.cfg.Brand+"!", 11)
	r.y += 6
	r.centered("For any queries, please contact us.", 10)
	r.y += 6
	r.centered(r.cfg.Website, 10)
}
