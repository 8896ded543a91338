package sqlinline

const QInsertJob = `--sql c2d4e6f8-3a5b-4719-8c0d-5e4f3a2b1c0d
insert into jobs(id, user_id, kind, status, cost_tokens, brand_id, model_id, presets, created_at, updated_at)
values (
  gen_random_uuid(),
  $1::uuid,
  $2::text,
  'PROCESSING',
  $3::int,
  nullif($4::text, '')::uuid,
  nullif($5::text, '')::uuid,
  coalesce($6::jsonb, '[]'::jsonb),
  now(),
  now()
)
returning id, created_at;
`

// QLinkInputAssets joins through assets so links are only created for rows the
// job's user actually owns; callers compare the affected count against the
// requested set.
const QLinkInputAssets = `--sql d9e1f3a5-7b0c-4e28-9d16-8a7b6c5d4e3f
insert into job_input_assets(job_id, asset_id)
select $1::uuid, a.id
from assets a
where a.id = any($2::uuid[])
  and a.user_id = $3::uuid
on conflict do nothing;
`

const QLinkOutputAsset = `--sql 0b2d4f6a-9c8e-4351-a27b-3e2d1c0b9a8f
insert into job_output_assets(job_id, asset_id)
values ($1::uuid, $2::uuid)
on conflict do nothing;
`

const QMarkJobFailed = `--sql 5f7a9b1c-2e4d-4683-b0f9-7c6d5e4f3a2b
update jobs
set status = 'FAILED', error_message = $2::text, updated_at = now()
where id = $1::uuid
  and status in ('PENDING', 'PROCESSING')
returning id;
`

const QSelectJobForUser = `--sql 1a3b5c7d-4f6e-4092-8b1a-9d0e1f2a3b4c
select id, user_id, kind, status, cost_tokens, brand_id, model_id, presets, error_message, created_at, updated_at, completed_at
from jobs
where id = $1::uuid
  and user_id = $2::uuid
limit 1;
`

const QListJobsByUser = `--sql 8c0e2a4b-6d9f-4715-93c8-0a1b2c3d4e5f
select id, user_id, kind, status, cost_tokens, brand_id, model_id, presets, error_message, created_at, updated_at, completed_at
from jobs
where user_id = $1::uuid
  and ($2::text = '' or kind = $2::text)
  and ($3::text = '' or status = $3::text)
order by created_at desc
limit $4::int offset $5::int;
`

const QCountJobsByUser = `--sql 7e9f1b3d-5c8a-4624-b1e0-2f3a4b5c6d7e
select count(*)
from jobs
where user_id = $1::uuid
  and ($2::text = '' or kind = $2::text)
  and ($3::text = '' or status = $3::text);
`

// QSelectJobAssets lists the job's linked assets with their role; 'input'
// sorts ahead of 'output'.
const QSelectJobAssets = `--sql 3d5f7a9c-0b2e-4836-a4d2-6e5f4a3b2c1d
select a.id, a.kind, coalesce(a.side, ''), a.storage_key, a.filename, a.mime, a.bytes, a.properties, 'input' as role
from job_input_assets l
join assets a on a.id = l.asset_id
where l.job_id = $1::uuid
union all
select a.id, a.kind, coalesce(a.side, ''), a.storage_key, a.filename, a.mime, a.bytes, a.properties, 'output' as role
from job_output_assets l
join assets a on a.id = l.asset_id
where l.job_id = $1::uuid
order by role, id;
`
