package types

// MemberSpec describes one member as the parser collects it, before
// layout assigns offsets; BitWidth < 0 means "not a bit-field".
type MemberSpec struct {
	Name     string
	Type     *Type
	BitWidth int
}

// Layout computes Fields, Size and Align for a struct or union from
// specs, and marks t Complete. Struct members are packed in
// declaration order with each member's natural alignment; union
// members all start at offset 0. Bit-fields share a storage unit
// (sized to the declared bit-field type) with adjacent bit-fields
// until a zero-width bit-field or a change of declared type forces a
// new unit, per C99 6.7.2.1's "implementation-defined" packing choice
// that this front end resolves the same way its teacher's target
// model (LP64, little-endian bit order from the first declared
// bit-field) would.
func Layout(t *Type, specs []MemberSpec) {
	switch t.Kind {
	case Struct:
		layoutStruct(t, specs)
	case Union:
		layoutUnion(t, specs)
	default:
		return
	}
	t.Complete = true
}

func layoutStruct(t *Type, specs []MemberSpec) {
	offset := 0
	align := 1
	var unitType *Type
	unitOffset := 0
	bitPos := 0

	flushUnit := func() {
		if unitType == nil {
			return
		}
		offset = unitOffset + unitType.Size
		unitType = nil
		bitPos = 0
	}

	for _, spec := range specs {
		if spec.BitWidth >= 0 {
			if spec.BitWidth == 0 {
				flushUnit()
				continue
			}
			if unitType == nil || unitType != spec.Type || bitPos+spec.BitWidth > spec.Type.Size*8 {
				flushUnit()
				unitType = spec.Type
				unitOffset = alignUp(offset, spec.Type.Align)
				if unitType.Align > align {
					align = unitType.Align
				}
			}
			if spec.Name != "" {
				t.Fields = append(t.Fields, &Field{
					Name: spec.Name, Type: spec.Type, Offset: unitOffset,
					IsBitfield: true, BitOffset: bitPos, BitWidth: spec.BitWidth,
				})
			}
			bitPos += spec.BitWidth
			continue
		}
		flushUnit()
		offset = alignUp(offset, spec.Type.Align)
		t.Fields = append(t.Fields, &Field{Name: spec.Name, Type: spec.Type, Offset: offset})
		if spec.Type.Align > align {
			align = spec.Type.Align
		}
		offset += spec.Type.Size
	}
	flushUnit()

	t.Align = align
	t.Size = alignUp(offset, align)
	if t.Size == 0 {
		t.Size = align // a struct with no named members (the parser accepts an empty body) still occupies one alignment unit
	}
}

func layoutUnion(t *Type, specs []MemberSpec) {
	size := 0
	align := 1
	for _, spec := range specs {
		ft := spec.Type
		if spec.BitWidth >= 0 {
			if spec.BitWidth == 0 {
				continue
			}
			if spec.Name != "" {
				t.Fields = append(t.Fields, &Field{
					Name: spec.Name, Type: ft, Offset: 0,
					IsBitfield: true, BitOffset: 0, BitWidth: spec.BitWidth,
				})
			}
		} else {
			t.Fields = append(t.Fields, &Field{Name: spec.Name, Type: ft, Offset: 0})
		}
		if ft.Size > size {
			size = ft.Size
		}
		if ft.Align > align {
			align = ft.Align
		}
	}
	t.Align = align
	t.Size = alignUp(size, align)
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// FieldByName looks up a direct (non-anonymous) member by name.
func (t *Type) FieldByName(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
