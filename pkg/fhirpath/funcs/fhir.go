package funcs

import (
	"strings"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/types"
)

func init() {
	for _, def := range []FuncDef{
		{Name: "resolve", MinArgs: 0, MaxArgs: 0, Fn: fnResolve},
		{Name: "extension", MinArgs: 1, MaxArgs: 1, Fn: fnExtension},
		{Name: "hasExtension", MinArgs: 1, MaxArgs: 1, Fn: fnHasExtension},
		{Name: "getExtensionValue", MinArgs: 1, MaxArgs: 1, Fn: fnGetExtensionValue},
		{Name: "getReferenceKey", MinArgs: 0, MaxArgs: 1, Fn: fnGetReferenceKey},
	} {
		Register(def)
	}
}

// referenceString pulls the reference URL out of either a bare String
// (a contained "Patient/123" literal) or a Reference object's own
// "reference" field.
func referenceString(v types.Value) string {
	switch t := v.(type) {
	case types.String:
		return t.Value()
	case *types.ObjectValue:
		if ref, ok := t.Get("reference"); ok {
			if refStr, ok := ref.(types.String); ok {
				return refStr.Value()
			}
		}
	}
	return ""
}

// fnResolve dereferences every input Reference/String through the
// Context's resolver, skipping anything that can't be resolved. With no
// resolver configured the function returns empty, per spec, rather than
// erroring.
func fnResolve(ctx *eval.Context, input types.Collection, _ []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	resolver := ctx.GetResolver()
	if resolver == nil {
		return types.Collection{}, nil
	}

	result := types.Collection{}
	for _, item := range input {
		reference := referenceString(item)
		if reference == "" {
			continue
		}

		resourceJSON, err := resolver.Resolve(ctx.Context(), reference)
		if err != nil {
			continue
		}

		col, err := types.JSONToCollection(resourceJSON)
		if err != nil {
			continue
		}
		result = append(result, col...)
	}
	return result, nil
}

// fnExtension collects the extension objects on every input element whose
// url matches args[0].
func fnExtension(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	if input.Empty() || len(args) == 0 {
		return types.Collection{}, nil
	}

	url, ok := toStringArg(args[0])
	if !ok || url == "" {
		return types.Collection{}, nil
	}

	result := types.Collection{}
	for _, item := range input {
		obj, ok := item.(*types.ObjectValue)
		if !ok {
			continue
		}
		for _, ext := range obj.GetCollection("extension") {
			extObj, ok := ext.(*types.ObjectValue)
			if !ok {
				continue
			}
			if extURL, ok := extObj.Get("url"); ok {
				if urlStr, ok := extURL.(types.String); ok && urlStr.Value() == url {
					result = append(result, extObj)
				}
			}
		}
	}
	return result, nil
}

// fnHasExtension reports whether any input element carries an extension
// matching args[0].
func fnHasExtension(ctx *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	extensions, err := fnExtension(ctx, input, args)
	if err != nil {
		return nil, err
	}
	return types.BoolCollection(!extensions.Empty()), nil
}

// extensionValueFields lists every value[x] field name an Extension can
// carry, in FHIR's declared order; the first one present wins.
var extensionValueFields = []string{
	"valueString", "valueBoolean", "valueInteger", "valueDecimal",
	"valueDate", "valueDateTime", "valueTime", "valueCode",
	"valueCoding", "valueCodeableConcept", "valueQuantity",
	"valueReference", "valueIdentifier", "valuePeriod",
	"valueRange", "valueRatio", "valueAttachment",
	"valueUri", "valueUrl", "valueCanonical",
}

// fnGetExtensionValue returns the value[x] payload of every extension on
// input matching args[0]'s url.
func fnGetExtensionValue(ctx *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	extensions, err := fnExtension(ctx, input, args)
	if err != nil {
		return nil, err
	}

	result := types.Collection{}
	for _, ext := range extensions {
		extObj, ok := ext.(*types.ObjectValue)
		if !ok {
			continue
		}
		for _, field := range extensionValueFields {
			if val, ok := extObj.Get(field); ok {
				result = append(result, val)
				break
			}
		}
	}
	return result, nil
}

// fnGetReferenceKey extracts a piece of a FHIR reference: the resource
// type ("type"), the id ("id"), or by default the "ResourceType/id" key
// with any URL prefix stripped off.
func fnGetReferenceKey(_ *eval.Context, input types.Collection, args []interface{}) (types.Collection, error) {
	if input.Empty() {
		return types.Collection{}, nil
	}

	part := "key"
	if len(args) > 0 {
		if p, ok := toStringArg(args[0]); ok {
			part = p
		}
	}

	result := types.Collection{}
	for _, item := range input {
		reference := referenceString(item)
		if reference == "" {
			continue
		}
		if key, ok := referenceKeyPart(reference, part); ok {
			result = append(result, types.NewString(key))
		}
	}
	return result, nil
}

// referenceKeyPart strips any URL prefix from reference (keeping only the
// last "ResourceType/id" segment) and returns the requested part of it.
// ok is false only for part=="type" on a reference with no type prefix,
// matching fnGetReferenceKey's contract of skipping such elements.
func referenceKeyPart(reference, part string) (string, bool) {
	if idx := strings.LastIndex(reference, "/"); idx > 0 {
		beforeSlash := reference[:idx]
		if lastSlashBefore := strings.LastIndex(beforeSlash, "/"); lastSlashBefore >= 0 {
			reference = beforeSlash[lastSlashBefore+1:] + "/" + reference[idx+1:]
		}
	}

	switch part {
	case "type":
		idx := strings.Index(reference, "/")
		if idx <= 0 {
			return "", false
		}
		return reference[:idx], true
	case "id":
		if idx := strings.LastIndex(reference, "/"); idx >= 0 {
			return reference[idx+1:], true
		}
		return reference, true
	default:
		return reference, true
	}
}
