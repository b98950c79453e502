package report

import (
	"encoding/xml"
	"fmt"

	"github.com/workflowpro/qaharness/models"
)

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Name    string           `xml:"name,attr"`
	Tests   int              `xml:"tests,attr"`
	Fails   int              `xml:"failures,attr"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name  string          `xml:"name,attr"`
	Tests int             `xml:"tests,attr"`
	Fails int             `xml:"failures,attr"`
	Cases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string        `xml:"name,attr"`
	Time    string        `xml:"time,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
	Skipped *struct{}     `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// marshalJUnit renders the report as JUnit XML, one testsuite per Go
// package.
func marshalJUnit(r *models.RunReport) ([]byte, error) {
	byPackage := make(map[string][]models.TestResult)
	var order []string
	for _, res := range r.Results {
		if _, seen := byPackage[res.Package]; !seen {
			order = append(order, res.Package)
		}
		byPackage[res.Package] = append(byPackage[res.Package], res)
	}

	out := junitTestSuites{Name: "qaharness run " + r.RunID}
	for _, pkg := range order {
		suite := junitTestSuite{Name: pkg}
		for _, res := range byPackage[pkg] {
			tc := junitTestCase{
				Name: res.Name,
				Time: fmt.Sprintf("%.3f", res.Duration.Seconds()),
			}
			switch res.Status {
			case "fail":
				tc.Failure = &junitFailure{Message: "test failed", Body: res.Output}
				suite.Fails++
				out.Fails++
			case "skip":
				tc.Skipped = &struct{}{}
			}
			suite.Cases = append(suite.Cases, tc)
			suite.Tests++
			out.Tests++
		}
		out.Suites = append(out.Suites, suite)
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
