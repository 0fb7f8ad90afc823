// Package printing implements the log printing pipeline: splitting log
// messages into form rows, paginating rows over a fixed form template,
// rendering and merging PDF pages, rasterizing the document with Ghostscript
// and driving a printer frame by frame.
//
// This package contains:
// - FormTemplate and TemplateStore for YAML form definitions (ICS-109 embedded)
// - RowSplitter and RowQueue for fitting text to a measured field width
// - Paginator, which discovers page capacity from the first page
// - PageRenderer and DocumentAssembler built on fpdf and gofpdi
// - GhostscriptRasterizer, which converts the document into PNG frames
// - PrintDriver and the Printer implementations (lp spool, PNG directory)
// - Scratch, which owns the per-job temporary files
//
// Example usage:
//
//	tpl, err := NewTemplateStore(nil).Get(DefaultTemplateName)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	splitter, err := NewTemplateRowSplitter(tpl, NewFpdfMeasurer(), time.Local)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	queue := DrainRows(splitter.Split(records))
//	renderer, _ := NewPageRenderer(&PageRendererConfig{Template: tpl})
//	header := NewHeader(mission, records, queue, time.Now())
//	pages, err := NewPaginator(tpl).Paginate(queue, func(c PageContent) (*PageArtifact, error) {
//	    return renderer.Render(c, header)
//	})
package printing
