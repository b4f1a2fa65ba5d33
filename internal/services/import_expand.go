package services

import (
	"regexp"
	"strings"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/translations"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
)

var (
	permissionFixedColumns  = map[string]bool{"verb": true, "noun": true, "objectId": true}
	translationFixedColumns = map[string]bool{"stringId": true}
	joinIDUnsafe            = regexp.MustCompile(`[^A-Za-z0-9-]+`)
)

// expandSheet turns a worksheet into one or more batches. Pivoted sheets produce one row per
// non-blank cell; lab test panels also yield their membership rows.
func (im *Importer) expandSheet(run *importRun, sheet workbook.Sheet, dt DataType) []*SheetBatch {
	switch dt.Name {
	case "permission":
		return []*SheetBatch{expandPermissions(run, sheet, dt)}
	case "translatedString":
		return []*SheetBatch{expandTranslatedStrings(sheet, dt)}
	case "labTestPanel":
		panels := expandFlat(sheet, dt)
		members, ok := im.dataTypes.Lookup("labTestPanelLabTestType")
		if !ok {
			return []*SheetBatch{panels}
		}
		return []*SheetBatch{panels, expandPanelMembers(panels, members)}
	}
	return []*SheetBatch{expandFlat(sheet, dt)}
}

func expandFlat(sheet workbook.Sheet, dt DataType) *SheetBatch {
	batch := newSheetBatch(sheet.Title, dt)
	for _, r := range sheet.Rows {
		values := repositories.Record{}
		for k, v := range r.Values {
			values[k] = v
		}
		normaliseAliases(dt.Model, values)
		if dt.Model == "ReferenceData" {
			values["type"] = dt.Name
		}
		batch.add(apperrors.Row(r.Number), values)
	}
	return batch
}

// normaliseAliases accepts "<x>Id" as a header for the foreign key column "<x>"
func normaliseAliases(model string, values repositories.Record) {
	for _, fk := range foreignKeysFor(model) {
		alias, ok := values[fk.IDField]
		if !ok {
			continue
		}
		delete(values, fk.IDField)
		if textOf(values[fk.Column]) == "" {
			values[fk.Column] = alias
		}
	}
}

func expandPermissions(run *importRun, sheet workbook.Sheet, dt DataType) *SheetBatch {
	batch := newSheetBatch(sheet.Title, dt)
	for _, r := range sheet.Rows {
		verb := textOf(r.Values["verb"])
		noun := textOf(r.Values["noun"])
		objectID := textOf(r.Values["objectId"])

		for i, key := range sheet.Keys {
			if key == "" || permissionFixedColumns[key] {
				continue
			}
			cell := textOf(r.Values[key])
			if cell == "" {
				continue
			}
			role := sheet.Header[i]

			scope := objectID
			if scope == "" {
				scope = "any"
			}
			values := repositories.Record{
				"id":       strings.ToLower(strings.Join([]string{role, verb, noun, scope}, "-")),
				"role":     role,
				"verb":     verb,
				"noun":     noun,
				"objectId": objectID,
				"yCell":    cell,
			}
			if strings.EqualFold(cell, "n") {
				values["deletedAt"] = run.now
			}
			batch.add(apperrors.Row(r.Number), values)
		}
	}
	return batch
}

func expandTranslatedStrings(sheet workbook.Sheet, dt DataType) *SheetBatch {
	batch := newSheetBatch(sheet.Title, dt)
	for _, r := range sheet.Rows {
		stringID := textOf(r.Values["stringId"])
		for i, key := range sheet.Keys {
			if key == "" || translationFixedColumns[key] {
				continue
			}
			text := textOf(r.Values[key])
			if text == "" {
				continue
			}
			batch.add(apperrors.Row(r.Number), repositories.Record{
				"stringId": stringID,
				"language": sheet.Header[i],
				"text":     text,
			})
		}
	}
	return batch
}

func expandPanelMembers(panels *SheetBatch, dt DataType) *SheetBatch {
	batch := newSheetBatch(panels.SheetName, dt)
	for _, panel := range panels.Rows {
		panelID := textOf(panel.Values["id"])
		if panelID == "" {
			continue
		}
		for i, ref := range translations.NormaliseOptions(panel.Values["testTypesInPanel"]) {
			batch.add(panel.Location, repositories.Record{
				"id":           panelID + "-" + strings.Trim(joinIDUnsafe.ReplaceAllString(ref, "-"), "-"),
				"labTestPanel": panelID,
				"labTestType":  ref,
				"order":        i,
			})
		}
	}
	return batch
}
