package engine

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ManifestFile is the file that marks a folder as an extension.
const ManifestFile = "package.json"

// ParseManifest reads the fields the scanner needs out of package.json.
// Field types vary a lot between extensions, so values are read with gjson
// rather than decoded into a fixed struct.
func ParseManifest(dir, folder string, data []byte) (ExtensionRecord, error) {
	if !gjson.ValidBytes(data) {
		return ExtensionRecord{}, errors.New("invalid JSON")
	}
	pkg := gjson.ParseBytes(data)
	if !pkg.IsObject() {
		return ExtensionRecord{}, errors.New("manifest is not a JSON object")
	}

	rec := ExtensionRecord{
		Dir:             dir,
		Folder:          folder,
		Name:            pkg.Get("name").String(),
		Publisher:       publisherOf(pkg),
		DeclaredLicense: declaredLicense(pkg),
	}
	if rec.Name == "" {
		rec.Name = folder
	}

	for _, key := range CapabilityKeys {
		v := pkg.Get(key)
		if !v.Exists() {
			continue
		}
		c := Capability{Key: key, Count: -1}
		// Array() would wrap a scalar as one element; count real arrays only.
		if v.IsArray() {
			c.Count = len(v.Array())
		}
		rec.Capabilities = append(rec.Capabilities, c)
	}
	return rec, nil
}

func publisherOf(pkg gjson.Result) string {
	if p := pkg.Get("publisher").String(); p != "" {
		return p
	}
	author := pkg.Get("author")
	if author.IsObject() {
		author = author.Get("name")
	}
	if a := author.String(); a != "" {
		return a
	}
	return "unknown"
}

// declaredLicense flattens "license" or the legacy "licenses" field, which may
// be a string, an object with a "type", or an array of either.
func declaredLicense(pkg gjson.Result) string {
	lic := pkg.Get("license")
	if licenseText(lic) == "" {
		lic = pkg.Get("licenses")
	}
	return licenseText(lic)
}

func licenseText(v gjson.Result) string {
	switch {
	case v.IsArray():
		var parts []string
		for _, e := range v.Array() {
			if s := licenseText(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case v.IsObject():
		return v.Get("type").String()
	case v.Type == gjson.String, v.Type == gjson.Number:
		return v.String()
	}
	return ""
}
