package report

import (
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/capital-cli/internal/model"
)

const htmlReport = `<!DOCTYPE html>
<html>
<head>
    <title>Capital and Budget Report ({{.Source}})</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1, h2, h3 { color: #333; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        .red-text { color: red; font-weight: bold; }
        .green-text { color: green; font-weight: bold; }
    </style>
</head>
<body>
    <h1>Capital and Budget Monitoring Report</h1>
    <p>Report generated on: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
    <p>Reporting as of: {{.AsOf.Format "2006-01-02"}}</p>
{{if eq .Table.Len 0}}
    <p>No data available for the selected projects. Adjust the selection or upload more data.</p>
{{else}}
    <h2>1. Key Metrics</h2>
    <table>
        <tr><th>Projects</th><th>Total Actuals</th><th>Total Forecasts</th><th>Total Capital Plan</th><th>Total Allocation</th><th>Net Reallocation</th><th>Mean Spread Score</th></tr>
        <tr>
            <td>{{.Metrics.Projects}}</td>
            <td>{{money .Metrics.TotalActuals}}</td>
            <td>{{money .Metrics.TotalForecasts}}</td>
            <td>{{money .Metrics.TotalCapitalPlan}}</td>
            <td>{{money .Metrics.TotalAllocation}}</td>
            <td>{{money .Metrics.NetReallocation}}</td>
            <td>{{score .Metrics.MeanSpreadScore}}</td>
        </tr>
    </table>

    <h2>2. Project Performance Summary</h2>
    <table>
        <tr><th>Group</th><th>Projects</th><th>Total Actuals</th><th>Total Allocation</th><th>Net Reallocation</th><th>Spread Score</th><th>Percentage Deviation</th></tr>
        {{range .Groups}}
        <tr>
            <td>{{label .Key}}</td>
            <td>{{.Projects}}</td>
            <td>{{money .TotalActuals}}</td>
            <td>{{money .TotalAllocation}}</td>
            <td>{{money .NetReallocation}}</td>
            <td>{{score .MeanSpreadScore}}</td>
            <td>{{deviation .PercentDeviation}}</td>
        </tr>
        {{end}}
    </table>

    <h3>Projects over 10% or under -10% of budget:</h3>
    <ul>
        {{range .Over}}
        <li><span class="red-text">{{label .Key}}</span>: Actual Spend: {{money .TotalActuals}} (Over budget by {{deviation .PercentDeviation}})</li>
        {{end}}
        {{range .Under}}
        <li><span class="green-text">{{label .Key}}</span>: Actual Spend: {{money .TotalActuals}} (Under budget by {{deviation (abs .PercentDeviation)}})</li>
        {{end}}
        {{if and (not .Over) (not .Under)}}
        <li>No projects are currently over or under 10% of their budget for the selected period.</li>
        {{end}}
    </ul>

    <h2>3. Derived Project Data</h2>
    <table>
        <tr>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr>
        {{range .Table.Rows}}
        {{$row := .}}
        <tr>{{range $.Table.Columns}}<td>{{cell $row .}}</td>{{end}}</tr>
        {{end}}
    </table>
{{end}}
{{if .Commentary}}
    <h2>{{title .Commentary}}</h2>
    {{range .Commentary.Sections}}
    <h3>{{.Heading}}</h3>
    <p>{{.Body}}</p>
    {{end}}
{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money":     money,
	"score":     func(v float64) string { return printer.Sprintf("%.2f", v) },
	"deviation": deviation,
	"abs":       absFloat,
	"label":     groupLabel,
	"title":     commentaryTitle,
	"cell": func(row model.Row, col string) string {
		return row.Str(col)
	},
}).Parse(htmlReport))

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// WriteHTML renders the self-contained HTML report.
func WriteHTML(w io.Writer, d *Data) error {
	return eris.Wrap(htmlTemplate.Execute(w, d), "report: render html")
}
