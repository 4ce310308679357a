package pdf

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/model"
)

// Embed attaches invoice XML to an existing PDF under the standard
// attachment name and returns the rewritten document. The attachment is
// wired the way Factur-X requires: a Flate-compressed embedded file
// stream, a file specification marked as the Alternative rendition of the
// document, an entry in the EmbeddedFiles name tree and one in the
// catalog's associated-files array.
func Embed(pdf, xml []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return nil, model.NewInputInvalidError("not a readable PDF: " + err.Error())
	}

	sdRef, err := newEmbeddedFileStream(ctx, xml)
	if err != nil {
		return nil, err
	}
	fsRef, err := newFileSpec(ctx, sdRef)
	if err != nil {
		return nil, err
	}
	if err := registerAttachment(ctx, fsRef); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, model.NewIOError("pdf: write document", err)
	}
	return buf.Bytes(), nil
}

func newEmbeddedFileStream(ctx *pdfmodel.Context, xml []byte) (*types.IndirectRef, error) {
	sd := types.StreamDict{
		Dict: types.Dict(map[string]types.Object{
			"Type":    types.Name("EmbeddedFile"),
			"Subtype": types.Name("text/xml"),
			"Params": types.Dict(map[string]types.Object{
				"Size": types.Integer(len(xml)),
			}),
		}),
		Content:        xml,
		FilterPipeline: []types.PDFFilter{{Name: filter.Flate}},
	}
	sd.InsertName("Filter", filter.Flate)

	if err := sd.Encode(); err != nil {
		return nil, model.NewIOError("pdf: encode attachment stream", err)
	}
	ref, err := ctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, model.NewIOError("pdf: register attachment stream", err)
	}
	return ref, nil
}

func newFileSpec(ctx *pdfmodel.Context, sdRef *types.IndirectRef) (*types.IndirectRef, error) {
	fsDict := types.Dict(map[string]types.Object{
		"Type":           types.Name("Filespec"),
		"F":              types.StringLiteral(cii.AttachmentName),
		"UF":             types.StringLiteral(cii.AttachmentName),
		"Desc":           types.StringLiteral("Factur-X invoice"),
		"AFRelationship": types.Name("Alternative"),
		"EF": types.Dict(map[string]types.Object{
			"F":  *sdRef,
			"UF": *sdRef,
		}),
	})
	ref, err := ctx.IndRefForNewObject(fsDict)
	if err != nil {
		return nil, model.NewIOError("pdf: register file specification", err)
	}
	return ref, nil
}

// registerAttachment adds the file specification to the EmbeddedFiles
// name tree and the catalog's AF array, creating either when absent.
func registerAttachment(ctx *pdfmodel.Context, fsRef *types.IndirectRef) error {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return model.NewIOError("pdf: read catalog", err)
	}

	namesDict, err := ctx.DereferenceDict(rootDict["Names"])
	if err != nil || namesDict == nil {
		namesDict = types.Dict(map[string]types.Object{})
		rootDict["Names"] = namesDict
	}

	pair := types.Array{types.StringLiteral(cii.AttachmentName), *fsRef}

	treeDict, err := ctx.DereferenceDict(namesDict["EmbeddedFiles"])
	if err != nil || treeDict == nil {
		namesDict["EmbeddedFiles"] = types.Dict(map[string]types.Object{
			"Names": pair,
		})
	} else {
		names, err := ctx.DereferenceArray(treeDict["Names"])
		if err != nil {
			names = types.Array{}
		}
		treeDict["Names"] = append(names, pair...)
	}

	af, err := ctx.DereferenceArray(rootDict["AF"])
	if err != nil {
		af = types.Array{}
	}
	rootDict["AF"] = append(af, *fsRef)

	return nil
}
