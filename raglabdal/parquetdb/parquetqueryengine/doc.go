package parquetqueryengine

/*
package parquetqueryengine is a pure-go implementation of a SQL-style query engine for querying parquet files.

Fill in the `*Query` object, and call `Run`.

Internally, it works like this:

- Parquet files are a collection of "row groups", which contain a number of rows. How many rows per "row group" depends on the RowGroupSize setting when you write your parquet file.
- Each column chunk in a row group carries min/max statistics. Before scanning a row group, the WHERE filter is checked against these statistics; row groups that cannot contain a matching row are skipped without reading any of their values.
- Only columns referenced by the SELECT list or the WHERE filter are ever read.
*/
