package webservices

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jamesrr39/raglab/raglabdal/parquetdb"
)

type AdminService struct {
	logger            *logpkg.Logger
	pathsConfig       *raglabdal.PathsConfig
	dbConnSet         *raglabdal.DBConnSet
	importQueue       *raglabdal.ImportQueue
	routerURLBasePath string
	chi.Router
}

func NewAdminService(
	logger *logpkg.Logger,
	pathsConfig *raglabdal.PathsConfig,
	dbConnSet *raglabdal.DBConnSet,
	importQueue *raglabdal.ImportQueue,
	routerURLBasePath string,
) (*AdminService, errorsx.Error) {

	as := &AdminService{logger, pathsConfig, dbConnSet, importQueue, routerURLBasePath, chi.NewRouter()}

	as.Router.Get("/", as.handleGet)
	as.Router.Post("/rawDataFile", as.handlePostRawDataFile)

	return as, nil
}

func (as *AdminService) handlePostRawDataFile(w http.ResponseWriter, r *http.Request) {
	multipartFile, formData, err := r.FormFile("rawDataFile")
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}
	defer multipartFile.Close()

	baseName := strings.TrimSuffix(formData.Filename, raglabdal.DocsFileSuffix)

	importFunc := func(docsReader raglabdal.DocsReader) (raglabdal.DataSourceConn, errorsx.Error) {
		datasetDirPath := filepath.Join(
			as.pathsConfig.DataDir,
			fmt.Sprintf("%s_%s", baseName, time.Now().Format("2006-01-02_15_04_05")),
		)

		importer, err := parquetdb.NewImporter(datasetDirPath, parquetdb.DefaultParallelism, parquetdb.DefaultRowGroupSize)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		dbConn, _, err := raglabdal.Import(
			as.logger,
			docsReader,
			importer,
			raglabdal.DefaultImportOpts(),
		)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		return dbConn, nil
	}

	err = as.importQueue.AddItemToQueue(multipartFile, formData.Filename, importFunc, as.dbConnSet.AddDBConn)
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}
}

func (as *AdminService) handleGet(w http.ResponseWriter, r *http.Request) {
	var datasetNames []string
	for _, dbConn := range as.dbConnSet.GetConns() {
		datasetNames = append(datasetNames, dbConn.Name())
	}

	data := map[string]interface{}{
		"DatasetNames":      datasetNames,
		"RouterURLBasePath": as.routerURLBasePath,
	}

	if as.pathsConfig != nil {
		data["DataDirImportPath"] = as.pathsConfig.DataDir
		data["RawDataImportPath"] = as.pathsConfig.RawDataFilesDir
		data["ImportQueueStatus"] = as.importQueue.GetItems()
	}
	err := adminTmpl.Execute(w, data)
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}
}

var adminTmpl *template.Template

func init() {
	var err error
	adminTmpl, err = template.New("admin/index.html").Parse(adminTemplate)
	if err != nil {
		panic(err)
	}
}

const adminTemplate = `
<html>
	<head>
		<title>admin</title>
		<style type="text/css">
		div {
			margin: 10px;
			border: 1px solid grey;
			padding: 10px;
		}

		</style>
		<script>

		function submitRawDataFile(formEl) {
			const formData = new FormData(formEl);

			fetch('/{{.RouterURLBasePath}}/rawDataFile', {method: 'POST', body: formData})
				.then(() => alert('successfully uploaded corpus file. File is queued for processing.'))
				.catch(e => {
					console.error(e);
					alert('failed to upload corpus file: ' + e);
				});
		}
		</script>
	</head>
	<body>
		<h1>Admin settings</h1>
		<div>
			<h2>Already loaded datasets</h2>
			{{range .DatasetNames}}
				<p>{{.}}</p>
			{{end}}
		</div>

		<div>
			<h2>Import Queue:</h2>
			<sub>Refresh page for updates</sub>
			{{range .ImportQueueStatus}}
				<h3>{{.RawDataFilePath}}</h3>
				<p>ID: {{.ID}}</p>
				<p>Status: {{.Status}}</p>
				<p>% progress: {{printf "%.2f%%" .ProgressPercent}}</p>
				<p>Time in progress: {{.TimeInProgress}}</p>
			{{end}}
		</div>

		<div>
			<h2>Corpus Data</h2>
			<p>To import a corpus, upload a JSONL documents file here. Each line must be one JSON document object.</p>

			<p>The file is chunked and written into a parquet dataset, which the analytic and retrieval endpoints can query directly.</p>

			<div>
				<h3>
					Upload a documents file
				</h3>
				<form action="javascript:;" method="POST" enctype="multipart/form-data" onsubmit="submitRawDataFile(this)" name="rawDataUploadForm">
					<p>Documents file (.jsonl file).</p>
					<p>This will be copied into <pre>{{.RawDataImportPath}}</pre> and the parquet dataset will be created under <pre>{{.DataDirImportPath}}</pre></p>
					<p>
						<label>
							Documents file (.jsonl file)
							<input type="file" name="rawDataFile" />
						</label>
					</p>
					<input type="submit" value="Go!" />
				</form>
			</div>
		</div>
	</body>
</html>
`
