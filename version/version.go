/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries a binary's build metadata - package name,
// release, build hash, license, author - and renders it as a one-line
// header or a fuller info block for --version output.
package version

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// License identifies the license a binary is distributed under.
type License uint8

const (
	License_MIT License = iota
	License_Apache_v2
	License_GNU_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_GNU_Affero_GPL_v3
	License_Mozilla_PL_v2
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4
	License_Creative_Common_Attribution_Share_Alike_v4
	License_SIL_Open_Font_v1
	License_Unlicense
)

var licenseNames = map[License]string{
	License_MIT:                                        "MIT License",
	License_Apache_v2:                                   "Apache License, Version 2.0",
	License_GNU_GPL_v3:                                  "GNU GENERAL PUBLIC LICENSE Version 3",
	License_GNU_Lesser_GPL_v3:                           "GNU LESSER GENERAL PUBLIC LICENSE Version 3",
	License_GNU_Affero_GPL_v3:                           "GNU AFFERO GENERAL PUBLIC LICENSE Version 3",
	License_Mozilla_PL_v2:                               "Mozilla Public License 2.0",
	License_Creative_Common_Zero_v1:                     "Creative Commons CC0 1.0 Universal",
	License_Creative_Common_Attribution_v4:              "Creative Commons Attribution 4.0 International",
	License_Creative_Common_Attribution_Share_Alike_v4:  "Creative Commons Attribution-ShareAlike 4.0 International",
	License_SIL_Open_Font_v1:                            "SIL Open Font License 1.1",
	License_Unlicense:                                   "The Unlicense",
}

// Name returns the license's display name.
func (l License) Name() string {
	if n, ok := licenseNames[l]; ok {
		return n
	}
	return "Unknown License"
}

// Version exposes a binary's build metadata.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetRootPackagePath() string
	GetLicenseName() string
	GetLicenseBoiler(license ...License) string
	GetLicenseLegal() string
	GetLicenseFull() string
	GetHeader() string
	GetInfo() string
}

type version struct {
	license     License
	pkg         string
	description string
	buildTime   time.Time
	build       string
	release     string
	author      string
	prefix      string
	rootPath    string
}

// NewVersion builds a Version. dateStr is parsed as RFC3339; an unparsable
// value falls back to time.Now(). rootPackage is any value whose runtime
// type lives in the package whose path should be reported; numSubPackage
// strips that many trailing path segments (0 keeps the full package path).
func NewVersion(
	license License,
	pkg string,
	description string,
	dateStr string,
	build string,
	release string,
	author string,
	prefix string,
	rootPackage interface{},
	numSubPackage int,
) Version {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		t = time.Now()
	}

	path := reflect.TypeOf(rootPackage).PkgPath()
	if numSubPackage > 0 {
		parts := strings.Split(path, "/")
		if numSubPackage < len(parts) {
			parts = parts[:len(parts)-numSubPackage]
		}
		path = strings.Join(parts, "/")
	}

	if pkg == "" || strings.EqualFold(pkg, "noname") {
		segs := strings.Split(path, "/")
		pkg = segs[len(segs)-1]
	}

	return &version{
		license:     license,
		pkg:         pkg,
		description: description,
		buildTime:   t,
		build:       build,
		release:     release,
		author:      author,
		prefix:      strings.ToUpper(prefix),
		rootPath:    path,
	}
}

func (v *version) GetPackage() string     { return v.pkg }
func (v *version) GetDescription() string { return v.description }
func (v *version) GetBuild() string       { return v.build }
func (v *version) GetRelease() string     { return v.release }
func (v *version) GetAuthor() string      { return v.author }
func (v *version) GetPrefix() string      { return v.prefix }
func (v *version) GetDate() string        { return v.buildTime.Format(time.RFC3339) }
func (v *version) GetTime() time.Time     { return v.buildTime }
func (v *version) GetRootPackagePath() string { return v.rootPath }

func (v *version) GetAppId() string {
	return fmt.Sprintf("%s_%s_%s", v.prefix, v.pkg, v.build)
}

func (v *version) GetLicenseName() string {
	return v.license.Name()
}

// GetLicenseBoiler returns a short attribution line for the version's
// license, or for an explicitly given one.
func (v *version) GetLicenseBoiler(license ...License) string {
	l := v.license
	if len(license) > 0 {
		l = license[0]
	}
	return fmt.Sprintf("Licensed under the %s.", l.Name())
}

// GetLicenseLegal returns the license's full legal name, as it would head
// a LICENSE file.
func (v *version) GetLicenseLegal() string {
	return v.license.Name()
}

// GetLicenseFull concatenates the boilerplate and legal name; callers
// wanting the verbatim license text should load it from the repository's
// LICENSE file instead, this is a display convenience only.
func (v *version) GetLicenseFull() string {
	return v.GetLicenseBoiler() + "\n" + v.GetLicenseLegal()
}

func (v *version) GetHeader() string {
	return fmt.Sprintf("%s %s (%s) - %s", v.pkg, v.release, v.build, v.description)
}

func (v *version) GetInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.GetHeader())
	fmt.Fprintf(&b, "Author:  %s\n", v.author)
	fmt.Fprintf(&b, "Built:   %s\n", v.GetDate())
	fmt.Fprintf(&b, "License: %s\n", v.GetLicenseName())
	fmt.Fprintf(&b, "Package: %s\n", v.rootPath)
	return b.String()
}
