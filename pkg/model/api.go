package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// APIDocument is the serialized form of a model as produced by a loader.
// It is what the model cache persists; Build turns it into a Model.
type APIDocument struct {
	Framework        string     `json:"framework" msgpack:"framework"`
	Version          string     `json:"version" msgpack:"version"`
	DefaultNamespace string     `json:"defaultNamespace,omitempty" msgpack:"default_namespace"`
	RootType         string     `json:"rootType,omitempty" msgpack:"root_type"`
	Classes          []APIClass `json:"classes" msgpack:"classes"`
	Enums            []APIEnum  `json:"enums,omitempty" msgpack:"enums"`
}

// APIDeprecation is the serialized deprecation notice.
type APIDeprecation struct {
	Since string `json:"since,omitempty" msgpack:"since"`
	Text  string `json:"text,omitempty" msgpack:"text"`
}

// APIClass is the serialized form of a Class.
type APIClass struct {
	Name               string          `json:"name" msgpack:"name"`
	Extends            string          `json:"extends,omitempty" msgpack:"extends"`
	Library            string          `json:"library,omitempty" msgpack:"library"`
	Abstract           bool            `json:"abstract,omitempty" msgpack:"abstract"`
	DefaultAggregation string          `json:"defaultAggregation,omitempty" msgpack:"default_aggregation"`
	Implements         []string        `json:"implements,omitempty" msgpack:"implements"`
	Description        string          `json:"description,omitempty" msgpack:"description"`
	Since              string          `json:"since,omitempty" msgpack:"since"`
	Visibility         string          `json:"visibility,omitempty" msgpack:"visibility"`
	Deprecated         *APIDeprecation `json:"deprecated,omitempty" msgpack:"deprecated"`
	Experimental       bool            `json:"experimental,omitempty" msgpack:"experimental"`
	Aggregations       []APIMember     `json:"aggregations,omitempty" msgpack:"aggregations"`
	Properties         []APIMember     `json:"properties,omitempty" msgpack:"properties"`
	Events             []APIMember     `json:"events,omitempty" msgpack:"events"`
}

// APIMember is the serialized form of an aggregation, property or event.
// Fields that do not apply to a kind are left empty.
type APIMember struct {
	Name         string          `json:"name" msgpack:"name"`
	Type         string          `json:"type,omitempty" msgpack:"type"`
	Cardinality  string          `json:"cardinality,omitempty" msgpack:"cardinality"`
	DefaultValue string          `json:"defaultValue,omitempty" msgpack:"default_value"`
	Translatable bool            `json:"translatable,omitempty" msgpack:"translatable"`
	Description  string          `json:"description,omitempty" msgpack:"description"`
	Since        string          `json:"since,omitempty" msgpack:"since"`
	Visibility   string          `json:"visibility,omitempty" msgpack:"visibility"`
	Deprecated   *APIDeprecation `json:"deprecated,omitempty" msgpack:"deprecated"`
	Experimental bool            `json:"experimental,omitempty" msgpack:"experimental"`
}

// APIEnum is the serialized form of an Enum.
type APIEnum struct {
	Name        string          `json:"name" msgpack:"name"`
	Library     string          `json:"library,omitempty" msgpack:"library"`
	Description string          `json:"description,omitempty" msgpack:"description"`
	Since       string          `json:"since,omitempty" msgpack:"since"`
	Deprecated  *APIDeprecation `json:"deprecated,omitempty" msgpack:"deprecated"`
	Values      []APIMember     `json:"values" msgpack:"values"`
}

// DecodeAPI reads a JSON model document.
func DecodeAPI(r io.Reader) (*APIDocument, error) {
	var doc APIDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode model document: %w", err)
	}
	return &doc, nil
}

// Merge appends the classes and enums of other, used when a version is split
// across one file per library.
func (d *APIDocument) Merge(other *APIDocument) {
	if other == nil {
		return
	}
	if d.DefaultNamespace == "" {
		d.DefaultNamespace = other.DefaultNamespace
	}
	if d.RootType == "" {
		d.RootType = other.RootType
	}
	d.Classes = append(d.Classes, other.Classes...)
	d.Enums = append(d.Enums, other.Enums...)
}

// Build converts the document into an immutable Model.
func (d *APIDocument) Build() (*Model, error) {
	b := NewBuilder(d.Framework, d.Version).
		WithDefaultNamespace(d.DefaultNamespace).
		WithRootType(d.RootType)

	for i := range d.Classes {
		b.AddClass(d.Classes[i].toClass())
	}
	for i := range d.Enums {
		b.AddEnum(d.Enums[i].toEnum())
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build model %s: %w", Key{d.Framework, d.Version}, err)
	}
	return m, nil
}

func (c *APIClass) toClass() *Class {
	cls := &Class{
		Name:               c.Name,
		Extends:            c.Extends,
		Library:            c.Library,
		Abstract:           c.Abstract,
		DefaultAggregation: c.DefaultAggregation,
		Implements:         append([]string(nil), c.Implements...),
		Meta:               toMeta(c.Description, c.Since, c.Visibility, c.Deprecated, c.Experimental),
	}
	for _, a := range c.Aggregations {
		cls.Aggregations = append(cls.Aggregations, &Aggregation{
			Name:        a.Name,
			Type:        a.Type,
			Cardinality: Cardinality(a.Cardinality),
			Meta:        a.meta(),
		})
	}
	for _, p := range c.Properties {
		cls.Properties = append(cls.Properties, &Property{
			Name:         p.Name,
			Type:         p.Type,
			Default:      p.DefaultValue,
			Translatable: p.Translatable,
			Meta:         p.meta(),
		})
	}
	for _, e := range c.Events {
		cls.Events = append(cls.Events, &Event{Name: e.Name, Meta: e.meta()})
	}
	return cls
}

func (e *APIEnum) toEnum() *Enum {
	enum := &Enum{
		Name:    e.Name,
		Library: e.Library,
		Meta:    toMeta(e.Description, e.Since, "", e.Deprecated, false),
	}
	for _, v := range e.Values {
		enum.Values = append(enum.Values, &EnumValue{Name: v.Name, Meta: v.meta()})
	}
	return enum
}

func (a APIMember) meta() Meta {
	return toMeta(a.Description, a.Since, a.Visibility, a.Deprecated, a.Experimental)
}

func toMeta(description, since, visibility string, dep *APIDeprecation, experimental bool) Meta {
	m := Meta{
		Description:  description,
		Since:        since,
		Visibility:   Visibility(visibility),
		Experimental: experimental,
	}
	if dep != nil {
		m.Deprecated = &Deprecation{Since: dep.Since, Text: dep.Text}
	}
	return m
}
