package services

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/terms"
	"github.com/anjiri1684/tutor_scheduler/utils"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed templates/invoice.html
var invoiceTemplateSource string

var invoiceTemplate = template.Must(template.New("invoice").Parse(invoiceTemplateSource))

// InvoiceDocument is everything printed on an invoice.
type InvoiceDocument struct {
	Reference   string
	DateIssued  string
	StudentName string
	TutorName   string
	Lines       []InvoiceLine
	Total       string
	Paid        bool
	DatePaid    string
}

// InvoiceLine is one billed occurrence.
type InvoiceLine struct {
	Date     string
	Time     string
	Duration int
	Venue    string
	Price    string
}

// DocumentPublisher stores a rendered invoice and returns where it lives.
type DocumentPublisher interface {
	Publish(ctx context.Context, invoiceID uuid.UUID, doc InvoiceDocument) (string, error)
}

func newInvoiceDocument(inv models.Invoice, student, tutor models.User) InvoiceDocument {
	doc := InvoiceDocument{
		Reference:   inv.Reference,
		DateIssued:  inv.DateIssued.Format("January 2, 2006"),
		StudentName: student.FullName,
		TutorName:   tutor.FullName,
		Total:       inv.TotalAmount.StringFixed(2),
		Paid:        inv.Paid,
	}
	if inv.DatePaid != nil {
		doc.DatePaid = inv.DatePaid.Format("January 2, 2006")
	}
	for _, l := range inv.Lessons {
		for _, d := range terms.ExpandOccurrences(l.FirstDate, l.Frequency, l.Term) {
			doc.Lines = append(doc.Lines, InvoiceLine{
				Date:     d.Format(utils.DateLayout),
				Time:     l.Time.String(),
				Duration: l.Duration,
				Venue:    l.Venue,
				Price:    l.Price.StringFixed(2),
			})
		}
	}
	return doc
}

func renderInvoiceHTML(doc InvoiceDocument) (string, error) {
	var rendered bytes.Buffer
	if err := invoiceTemplate.Execute(&rendered, doc); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

// RenderDocument prints the invoice to PDF, publishes it and stores the
// resulting URL on the invoice.
func (s *Invoices) RenderDocument(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Invoice, error) {
	if s.publisher == nil {
		return nil, errors.New("invoice documents are not configured")
	}
	inv, err := s.GetInvoice(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != inv.StudentID {
		return nil, utils.ErrNotAuthorized
	}

	var student, tutor models.User
	if err := s.read(ctx).First(&student, "id = ?", inv.StudentID).Error; err != nil {
		return nil, lookupErr(err, "student")
	}
	if err := s.read(ctx).First(&tutor, "id = ?", inv.TutorID).Error; err != nil {
		return nil, lookupErr(err, "tutor")
	}

	url, err := s.publisher.Publish(ctx, inv.ID, newInvoiceDocument(*inv, student, tutor))
	if err != nil {
		return nil, errors.Wrap(err, "publish invoice document")
	}

	err = s.transact(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("document_url", url).Error
	})
	if err != nil {
		return nil, err
	}
	inv.DocumentURL = &url
	logrus.WithFields(logrus.Fields{"invoice_id": inv.ID, "url": url}).Info("invoice document published")
	return inv, nil
}

// PDFPublisher prints invoices with headless Chrome and uploads the PDF to
// Cloudinary.
type PDFPublisher struct {
	CloudinaryURL string
	Folder        string
	Timeout       time.Duration
}

func (p PDFPublisher) Publish(ctx context.Context, invoiceID uuid.UUID, doc InvoiceDocument) (string, error) {
	html, err := renderInvoiceHTML(doc)
	if err != nil {
		return "", errors.Wrap(err, "render invoice html")
	}
	pdf, err := generatePDFFromHTML(ctx, html)
	if err != nil {
		return "", errors.Wrap(err, "print invoice pdf")
	}
	return p.upload(ctx, pdf, fmt.Sprintf("%s_%s", doc.Reference, invoiceID))
}

func generatePDFFromHTML(parent context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func (p PDFPublisher) upload(ctx context.Context, fileBytes []byte, publicID string) (string, error) {
	cld, err := cloudinary.NewFromURL(p.CloudinaryURL)
	if err != nil {
		return "", err
	}

	timeout := p.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	folder := p.Folder
	if folder == "" {
		folder = "tutor_scheduler_invoices"
	}
	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploader.UploadParams{
		PublicID:     "invoices/" + publicID,
		Folder:       folder,
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
