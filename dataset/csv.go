package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rssalg/rssalg/errors"
)

// Source is the full dataset a cross-validation experiment is built from
type Source struct {
	Attributes []string
	ClassNames []string
	Instances  []Instance
}

// LoadSource reads a CSV file with a header row. classAttribute names the
// label column. idAttribute names the id column; when it is empty or absent
// ids are synthesised from the row number. All other columns must be numeric.
func LoadSource(path, classAttribute, idAttribute string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read header of %s", path)
	}

	classCol, idCol := -1, -1
	var attrCols []int
	var attributes []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == classAttribute:
			classCol = i
		case idAttribute != "" && name == idAttribute:
			idCol = i
		default:
			attrCols = append(attrCols, i)
			attributes = append(attributes, name)
		}
	}
	if classCol < 0 {
		return nil, errors.Newf("class attribute %q not found in %s", classAttribute, path)
	}

	src := &Source{Attributes: attributes}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		row++

		inst := Instance{
			Class:    strings.TrimSpace(record[classCol]),
			Features: make([]float64, len(attrCols)),
		}
		if idCol >= 0 {
			inst.ID = strings.TrimSpace(record[idCol])
		} else {
			inst.ID = strconv.Itoa(row)
		}
		for j, col := range attrCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d: attribute %q is not numeric", path, row, attributes[j])
			}
			inst.Features[j] = v
		}
		src.Instances = append(src.Instances, inst)
	}

	if len(src.Instances) == 0 {
		return nil, errors.Newf("dataset %s has no instances", path)
	}
	src.ClassNames = classNamesOf(src.Instances)
	return src, nil
}

// writeInstances writes one partition as CSV: id, class, attributes...
func writeInstances(path string, attributes []string, instances []Instance) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	writer := csv.NewWriter(file)
	header := append([]string{"id", "class"}, attributes...)
	if err := writer.Write(header); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	record := make([]string, len(header))
	for _, inst := range instances {
		record[0] = inst.ID
		record[1] = inst.Class
		for i, v := range inst.Features {
			record[i+2] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "failed to flush %s", path)
	}
	return nil
}

// readInstances reads a partition written by writeInstances. The attribute
// header must match the fold's attribute list.
func readInstances(path string, attributes []string) ([]Instance, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read header of %s", path)
	}
	if len(header) != len(attributes)+2 || header[0] != "id" || header[1] != "class" {
		return nil, errors.Newf("%s: unexpected header %v", path, header)
	}
	for i, name := range attributes {
		if header[i+2] != name {
			return nil, errors.Newf("%s: column %d is %q, expected %q", path, i+2, header[i+2], name)
		}
	}

	var instances []Instance
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		inst := Instance{ID: record[0], Class: record[1], Features: make([]float64, len(attributes))}
		for i := range attributes {
			v, err := strconv.ParseFloat(record[i+2], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s line %d: bad value for %q", path, line, attributes[i])
			}
			inst.Features[i] = v
		}
		instances = append(instances, inst)
	}
	return instances, nil
}
