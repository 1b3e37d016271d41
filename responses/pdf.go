package responses

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
)

// WritePDFBytesWithFilename serves an inline PDF.
func WritePDFBytesWithFilename(w http.ResponseWriter, filename string, PDFBytes []byte) {
	writePDF(w, "inline", filename, PDFBytes)
}

// WritePDFAttachment serves a PDF as a download.
func WritePDFAttachment(w http.ResponseWriter, filename string, PDFBytes []byte) {
	writePDF(w, "attachment", filename, PDFBytes)
}

func writePDF(w http.ResponseWriter, disposition, filename string, PDFBytes []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(PDFBytes)))
	w.WriteHeader(http.StatusOK) // Response Header Sent & Frozen
	if _, err := w.Write(PDFBytes); err != nil {
		log.Printf("[ERROR] writing PDF to response: %v", err)
	}
}
