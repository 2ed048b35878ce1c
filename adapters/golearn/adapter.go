// Package golearn converts between flat survey tables and
// github.com/sjwhitworth/golearn/base DenseInstances, so a prepared table can
// be handed to golearn models.
package golearn

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// ToDenseInstances converts a flat frame into golearn DenseInstances. Int and
// float columns become float attributes; every other scalar column becomes a
// categorical attribute over the cell text. The class attribute is
// classColumn, or the last column when classColumn is empty. Null cells are
// left at the zero value.
func ToDenseInstances(f *frame.Frame, classColumn string) (*base.DenseInstances, error) {
	schema := f.Schema()
	attrs := make([]base.Attribute, len(schema.Columns))
	class := -1
	for i, cs := range schema.Columns {
		switch {
		case cs.Type == frame.KindFloat || cs.Type == frame.KindInt:
			attrs[i] = base.NewFloatAttribute(cs.Name)
		case cs.Type.Scalar():
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			attrs[i] = ca
		default:
			return nil, fmt.Errorf("golearn: column %s holds %v values; flatten the table first", cs.Name, cs.Type)
		}
		if cs.Name == classColumn {
			class = i
		}
	}
	if classColumn != "" && class < 0 {
		return nil, fmt.Errorf("golearn: unknown class column: %s", classColumn)
	}
	if class < 0 {
		class = len(attrs) - 1
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < f.Rows(); r++ {
		for c := range attrs {
			v := f.At(r, c)
			if v.IsNull() {
				continue
			}
			if _, ok := attrs[c].(*base.FloatAttribute); ok {
				x, _ := v.Number()
				inst.Set(specs[c], r, base.PackFloatToBytes(x))
				continue
			}
			inst.Set(specs[c], r, attrs[c].GetSysValFromString(v.Text()))
		}
	}
	if class >= 0 {
		if err := inst.AddClassAttribute(attrs[class]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a frame of float
// and string columns.
func FromDenseInstances(inst *base.DenseInstances) (*frame.Frame, error) {
	attrs := inst.AllAttributes()
	cols := make([]string, len(attrs))
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		cols[i] = a.GetName()
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	b := frame.NewBuilder(cols)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		row := make([]frame.Value, len(attrs))
		for c, a := range attrs {
			raw := inst.Get(specs[c], r)
			if _, ok := a.(*base.FloatAttribute); ok {
				row[c] = frame.Float(base.UnpackBytesToFloat(raw))
				continue
			}
			row[c] = frame.String(a.GetStringFromSysVal(raw))
		}
		b.Append(row...)
	}
	return b.Frame()
}
