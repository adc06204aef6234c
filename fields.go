package jsonconv

import (
	"reflect"
	"strings"
)

type fieldInfo struct {
	index     []int
	name      string
	jsonName  string
	aliases   []string
	typ       reflect.Type
	omitEmpty bool
	inline    bool
	ignore    bool
}

// key is the object key the field is written under.
func (f *fieldInfo) key() string {
	if f.jsonName != "" {
		return f.jsonName
	}
	return f.name
}

type structMetadata struct {
	fields           []fieldInfo
	fieldsByName     map[string]*fieldInfo
	fieldsByJSONName map[string]*fieldInfo // json names and aliases
	fieldsByFolded   map[string]*fieldInfo // lower-cased keys of both maps above
}

// lookup finds the field an object key feeds. Ignored fields are never returned.
func (m *structMetadata) lookup(key string, caseInsensitive bool) *fieldInfo {
	fi, ok := m.fieldsByJSONName[key]
	if !ok {
		fi, ok = m.fieldsByName[key]
	}
	if !ok && caseInsensitive {
		fi, ok = m.fieldsByFolded[strings.ToLower(key)]
	}
	if !ok || fi.ignore {
		return nil
	}
	return fi
}

// WarmMetadata pre-builds field metadata for the struct types of the given values (T or *T).
func (e *Engine) WarmMetadata(examples ...any) {
	for _, ex := range examples {
		if ex == nil {
			continue
		}
		t := reflect.TypeOf(ex)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			continue
		}
		_ = e.getOrBuildMetadata(t)
	}
}

func (e *Engine) getOrBuildMetadata(typ reflect.Type) *structMetadata {
	if cached, ok := e.metadataCache.Load(typ); ok {
		return cached.(*structMetadata)
	}
	fc := countFields(typ)
	meta := &structMetadata{
		fields:           make([]fieldInfo, 0, fc),
		fieldsByName:     make(map[string]*fieldInfo, fc),
		fieldsByJSONName: make(map[string]*fieldInfo, fc),
		fieldsByFolded:   make(map[string]*fieldInfo, fc),
	}
	buildFieldMetadata(typ, meta, nil)
	for i := range meta.fields {
		fi := &meta.fields[i]
		indexField(meta.fieldsByName, fi.name, fi)
		if fi.jsonName != "" {
			indexField(meta.fieldsByJSONName, fi.jsonName, fi)
		}
		for _, a := range fi.aliases {
			indexField(meta.fieldsByJSONName, a, fi)
		}
	}
	for _, m := range []map[string]*fieldInfo{meta.fieldsByJSONName, meta.fieldsByName} {
		for k, fi := range m {
			indexField(meta.fieldsByFolded, strings.ToLower(k), fi)
		}
	}
	actual, _ := e.metadataCache.LoadOrStore(typ, meta)
	return actual.(*structMetadata)
}

// indexField stores fi under key unless a shallower field already owns it.
func indexField(m map[string]*fieldInfo, key string, fi *fieldInfo) {
	if cur, ok := m[key]; ok && len(cur.index) <= len(fi.index) {
		return
	}
	m[key] = fi
}

func safeFieldByIndex(val reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Pointer {
			if val.IsNil() {
				return reflect.Value{}, false
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val, true
}

// fieldByIndexAlloc is safeFieldByIndex for writes: nil embedded pointers are allocated.
func fieldByIndexAlloc(val reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Pointer {
			if val.IsNil() {
				val.Set(reflect.New(val.Type().Elem()))
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val
}

func embeddedStruct(f reflect.StructField) (reflect.Type, bool) {
	if !f.Anonymous || !f.IsExported() {
		return nil, false
	}
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return nil, false
	}
	ft := f.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	return ft, ft.Kind() == reflect.Struct
}

func countFields(typ reflect.Type) int {
	c := 0
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if ft, ok := embeddedStruct(f); ok {
			c += countFields(ft)
			continue
		}
		if f.IsExported() {
			c++
		}
	}
	return c
}

func buildFieldMetadata(typ reflect.Type, meta *structMetadata, prefix []int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if ft, ok := embeddedStruct(f); ok && !hasOption(f.Tag.Get("jsonconv"), "-", "ignore") {
			buildFieldMetadata(ft, meta, idx)
			continue
		}
		if !f.IsExported() {
			continue
		}
		fi := fieldInfo{index: idx, name: f.Name, typ: f.Type}
		if jt, ok := f.Tag.Lookup("json"); ok {
			name, opts, _ := strings.Cut(jt, ",")
			if name == "-" && opts == "" {
				fi.ignore = true
			} else {
				fi.jsonName = name
			}
			fi.omitEmpty = hasOption(opts, "omitempty", "omitzero")
		}
		for _, opt := range strings.Split(f.Tag.Get("jsonconv"), ",") {
			switch {
			case opt == "-" || opt == "ignore":
				fi.ignore = true
			case opt == "inline":
				fi.inline = true
			case opt == "omitempty":
				fi.omitEmpty = true
			case strings.HasPrefix(opt, "alias="):
				fi.aliases = append(fi.aliases, strings.Split(strings.TrimPrefix(opt, "alias="), "|")...)
			}
		}
		meta.fields = append(meta.fields, fi)
	}
}

func hasOption(opts string, names ...string) bool {
	for _, o := range strings.Split(opts, ",") {
		for _, n := range names {
			if o == n {
				return true
			}
		}
	}
	return false
}
