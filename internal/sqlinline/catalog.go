package sqlinline

const QListBrandsWithModels = `--sql 4e6a8c0d-2f5b-4873-a1e6-7d6c5b4a3f2e
select b.id, b.name, b.slug, b.popularity,
       coalesce(m.id::text, ''), coalesce(m.name, ''), coalesce(m.slug, '')
from brands b
left join car_models m on m.brand_id = b.id
order by b.popularity desc, b.name, m.name;
`

const QSelectBrandModelNames = `--sql b0d2f4a6-8c1e-4395-92d0-3f2e1d0c9b8a
select
  coalesce((select name from brands where id = nullif($1::text, '')::uuid), ''),
  coalesce((select name from car_models where id = nullif($2::text, '')::uuid), '');
`
