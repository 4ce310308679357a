// Package pdf reads and writes the hybrid invoice container: a PDF with
// the invoice XML carried as an embedded file. Extraction walks the
// document's embedded-file name tree and falls back to a raw object scan
// for PDFs whose name tree is broken; embedding produces the
// Factur-X-conforming attachment wiring on an existing PDF.
package pdf

import (
	"bytes"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezonia/facturx/internal/model"
)

// preferredNames are attachment names tried in order before falling back
// to the first XML attachment of any name.
var preferredNames = []string{
	"factur-x.xml",
	"zugferd-invoice.xml",
	"ZUGFeRD-invoice.xml",
	"xrechnung.xml",
}

type attachment struct {
	name    string
	content []byte
}

// Extract returns the invoice XML embedded in a PDF. It returns an
// AttachmentMissingError when the data is not a readable PDF or when no
// XML attachment can be located.
func Extract(data []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return nil, model.NewAttachmentMissingError("not a readable PDF", err)
	}

	attachments := fromNameTree(ctx)
	if len(attachments) == 0 {
		attachments = fromObjectScan(ctx)
	}
	if len(attachments) == 0 {
		return nil, model.NewAttachmentMissingError("PDF carries no XML attachment", nil)
	}

	for _, want := range preferredNames {
		for _, a := range attachments {
			if a.name == want {
				return a.content, nil
			}
		}
	}
	for _, a := range attachments {
		if strings.HasSuffix(strings.ToLower(a.name), ".xml") {
			return a.content, nil
		}
	}
	return attachments[0].content, nil
}

// fromNameTree collects attachments from the EmbeddedFiles name tree,
// including nested Kids nodes.
func fromNameTree(ctx *pdfmodel.Context) []attachment {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil
	}
	namesDict, err := ctx.DereferenceDict(rootDict["Names"])
	if err != nil || namesDict == nil {
		return nil
	}
	treeDict, err := ctx.DereferenceDict(namesDict["EmbeddedFiles"])
	if err != nil || treeDict == nil {
		return nil
	}
	return walkNameTree(ctx, treeDict)
}

func walkNameTree(ctx *pdfmodel.Context, node types.Dict) []attachment {
	var out []attachment

	if kids, err := ctx.DereferenceArray(node["Kids"]); err == nil {
		for _, kid := range kids {
			kidDict, err := ctx.DereferenceDict(kid)
			if err != nil || kidDict == nil {
				continue
			}
			out = append(out, walkNameTree(ctx, kidDict)...)
		}
	}

	names, err := ctx.DereferenceArray(node["Names"])
	if err != nil {
		return out
	}
	// Name tree leaves hold alternating name/filespec pairs.
	for i := 0; i+1 < len(names); i += 2 {
		name := decodeString(ctx, names[i])
		fsDict, err := ctx.DereferenceDict(names[i+1])
		if err != nil || fsDict == nil {
			continue
		}
		content, ok := embeddedFileContent(ctx, fsDict)
		if !ok {
			continue
		}
		out = append(out, attachment{name: name, content: content})
	}
	return out
}

// fromObjectScan walks the raw cross-reference table looking for embedded
// file streams that no name tree points at. Objects are visited in number
// order so repeated extractions return the same attachment.
func fromObjectScan(ctx *pdfmodel.Context) []attachment {
	objNrs := make([]int, 0, len(ctx.Table))
	for nr := range ctx.Table {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	var out []attachment
	for _, nr := range objNrs {
		entry := ctx.Table[nr]
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		if _, ok := entry.Object.(types.StreamDict); !ok {
			continue
		}
		// Re-dereference so the raw stream content is loaded.
		sd, _, err := ctx.DereferenceStreamDict(*types.NewIndirectRef(nr, 0))
		if err != nil || sd == nil {
			continue
		}
		if typ := sd.Type(); typ == nil || *typ != "EmbeddedFile" {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		out = append(out, attachment{content: sd.Content})
	}
	return out
}

func embeddedFileContent(ctx *pdfmodel.Context, fsDict types.Dict) ([]byte, bool) {
	efDict, err := ctx.DereferenceDict(fsDict["EF"])
	if err != nil || efDict == nil {
		return nil, false
	}
	stream := efDict["F"]
	if stream == nil {
		stream = efDict["UF"]
	}
	sd, _, err := ctx.DereferenceStreamDict(stream)
	if err != nil || sd == nil {
		return nil, false
	}
	if err := sd.Decode(); err != nil {
		return nil, false
	}
	return sd.Content, true
}

func decodeString(ctx *pdfmodel.Context, o types.Object) string {
	o, err := ctx.Dereference(o)
	if err != nil {
		return ""
	}
	switch s := o.(type) {
	case types.StringLiteral:
		if str, err := types.StringLiteralToString(s); err == nil {
			return str
		}
	case types.HexLiteral:
		if str, err := types.HexLiteralToString(s); err == nil {
			return str
		}
	}
	return ""
}
