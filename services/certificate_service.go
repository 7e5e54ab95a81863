package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/anjiri1684/course_marketplace/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:embed templates/certificate.html
var templateFS embed.FS

var certificateTemplate = template.Must(template.ParseFS(templateFS, "templates/certificate.html"))

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer func(ctx context.Context, html string) ([]byte, error)

// BlobUploader stores generated files and returns their public URL.
type BlobUploader interface {
	UploadBytes(ctx context.Context, r io.Reader, publicID, resourceType string) (string, error)
}

type CertificateService struct {
	db       *gorm.DB
	render   PDFRenderer
	uploader BlobUploader
	timeout  time.Duration
}

func NewCertificateService(db *gorm.DB, uploader BlobUploader, render PDFRenderer) *CertificateService {
	if render == nil {
		render = generatePDFFromHTML
	}
	return &CertificateService{db: db, render: render, uploader: uploader, timeout: time.Minute}
}

type certificateData struct {
	StudentName    string
	CourseTitle    string
	InstructorName string
	CompletionDate string
	CertificateID  string
}

// Issue renders, uploads and records the certificate of a completed course.
func (s *CertificateService) Issue(ctx context.Context, progress *models.CourseProgress, course *models.Course) error {
	if s.uploader == nil {
		return fmt.Errorf("certificate storage is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	studentName := progress.UserID
	var user models.User
	if err := s.db.WithContext(ctx).Select("user_name").First(&user, "id = ?", progress.UserID).Error; err == nil {
		studentName = user.UserName
	}

	completedAt := time.Now()
	if progress.CompletionDate != nil {
		completedAt = *progress.CompletionDate
	}

	var html bytes.Buffer
	err := certificateTemplate.Execute(&html, certificateData{
		StudentName:    studentName,
		CourseTitle:    course.Title,
		InstructorName: course.InstructorName,
		CompletionDate: completedAt.Format("January 2, 2006"),
		CertificateID:  progress.ID,
	})
	if err != nil {
		return fmt.Errorf("render certificate html: %w", err)
	}

	pdf, err := s.render(ctx, html.String())
	if err != nil {
		return fmt.Errorf("print certificate pdf: %w", err)
	}

	publicID := fmt.Sprintf("certificates/%s_%s_%s", progress.UserID, course.ID, uuid.NewString())
	url, err := s.uploader.UploadBytes(ctx, bytes.NewReader(pdf), publicID, "raw")
	if err != nil {
		return fmt.Errorf("upload certificate: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.CourseProgress{}).
		Where("id = ?", progress.ID).
		Update("certificate_url", url).Error; err != nil {
		return fmt.Errorf("store certificate url: %w", err)
	}
	progress.CertificateURL = &url

	log.Printf("✅ Issued certificate for course %s to user %s", course.ID, progress.UserID)
	return nil
}

func generatePDFFromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
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
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
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
